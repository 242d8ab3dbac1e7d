package internal

import "slices"

// Methods (Room Struct)
func (r *Room) GetPlayerByIndex(index int) *Player {
	if index < 0 || index >= len(r.PlayerOrder) {
		return nil
	}

	playerID := r.PlayerOrder[index]
	return r.Players[playerID]
}

// DrawerForRound picks the drawer by rotating through the current roster in
// join order. Rounds are 1-based.
func (r *Room) DrawerForRound(round int) *Player {
	if len(r.PlayerOrder) == 0 || round < 1 {
		return nil
	}

	return r.GetPlayerByIndex((round - 1) % len(r.PlayerOrder))
}

func (r *Room) GetPlayerCount() int {
	return len(r.Players)
}

func (r *Room) CanStartGame() bool {
	return r.GetPlayerCount() >= MinPlayersToStart
}

func (r *Room) AddPlayer(p *Player) {
	r.Players[p.Id] = p
	r.PlayerOrder = append(r.PlayerOrder, p.Id)
}

func (r *Room) RemovePlayer(id string) *Player {
	p, ok := r.Players[id]
	if !ok {
		return nil
	}

	delete(r.Players, id)
	r.PlayerOrder = slices.DeleteFunc(r.PlayerOrder, func(s string) bool {
		return s == id
	})
	return p
}

func (r *Room) ResetPlayerGuessState() {
	for _, player := range r.Players {
		player.ResetRoundState()
	}
}

// HasEveryoneGuessed reports whether every player other than the drawer has
// guessed. It is false when there is nobody to guess.
func (r *Room) HasEveryoneGuessed() bool {
	guessers := 0
	for _, player := range r.Players {
		if player.Id == r.CurrentDrawer {
			continue
		}
		if !player.HasGuessed {
			return false
		}
		guessers++
	}

	return guessers > 0
}

// WordPool returns the pool words are drawn from for this room.
func (r *Room) WordPool(defaults []string) []string {
	if len(r.CustomWords) > 0 {
		return r.CustomWords
	}
	return defaults
}

// PlayersInOrder lists players in join order.
func (r *Room) PlayersInOrder() []*Player {
	players := make([]*Player, 0, len(r.PlayerOrder))
	for _, id := range r.PlayerOrder {
		if p := r.Players[id]; p != nil {
			players = append(players, p)
		}
	}
	return players
}
