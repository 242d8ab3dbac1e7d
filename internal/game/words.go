package game

import (
	"math/rand/v2"
	"sync"
)

// DefaultWords is the pool used when a room has no custom words.
var DefaultWords = []string{
	"gato", "perro", "casa", "sol", "luna", "árbol", "flor", "corazón",
	"estrella", "montaña", "playa", "avión", "coche", "bicicleta", "libro",
	"teléfono", "computadora", "guitarra", "piano", "cámara", "reloj",
	"zapato", "sombrero", "paraguas", "llave", "puerta", "ventana", "mesa",
	"silla", "cama", "taza", "plato", "tenedor", "cuchillo", "manzana",
	"banana", "naranja", "uva", "fresa", "sandía", "piña",
}

// WordSelector picks secret words. It is shared by every room.
type WordSelector struct {
	mu       sync.Mutex
	rng      *rand.Rand
	defaults []string
}

// NewWordSelector requires a non-empty default pool. A zero seed seeds from
// the runtime's random source.
func NewWordSelector(defaults []string, seed uint64) (*WordSelector, error) {
	if len(defaults) == 0 {
		return nil, ErrEmptyWordPool
	}

	var src rand.Source
	if seed == 0 {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	} else {
		src = rand.NewPCG(seed, seed)
	}

	pool := make([]string, len(defaults))
	copy(pool, defaults)

	return &WordSelector{
		rng:      rand.New(src),
		defaults: pool,
	}, nil
}

// SelectWord chooses uniformly from custom when it is non-empty, otherwise
// from the default pool.
func (w *WordSelector) SelectWord(custom []string) (string, error) {
	pool := custom
	if len(pool) == 0 {
		pool = w.defaults
	}
	if len(pool) == 0 {
		return "", ErrEmptyWordPool
	}

	w.mu.Lock()
	idx := w.rng.IntN(len(pool))
	w.mu.Unlock()

	return pool[idx], nil
}

// Defaults returns a copy of the default pool.
func (w *WordSelector) Defaults() []string {
	out := make([]string, len(w.defaults))
	copy(out, w.defaults)
	return out
}
