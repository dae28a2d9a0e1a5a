package maze

// Doors holds the four door flags of a room.
type Doors struct {
	North bool `json:"north"`
	South bool `json:"south"`
	East  bool `json:"east"`
	West  bool `json:"west"`
}

// Has reports whether there is a door in direction d.
func (d Doors) Has(dir Direction) bool {
	switch dir {
	case North:
		return d.North
	case South:
		return d.South
	case East:
		return d.East
	case West:
		return d.West
	}
	return false
}

func (d *Doors) set(dir Direction) {
	switch dir {
	case North:
		d.North = true
	case South:
		d.South = true
	case East:
		d.East = true
	case West:
		d.West = true
	}
}

// Count returns how many doors are set.
func (d Doors) Count() int {
	n := 0
	for _, dir := range Directions {
		if d.Has(dir) {
			n++
		}
	}
	return n
}

// Any reports whether at least one door is set.
func (d Doors) Any() bool {
	return d.North || d.South || d.East || d.West
}

// Ad is a wall advertisement panel. Presentation metadata only.
type Ad struct {
	Type   string  `json:"type"` // "image", "video" or "canvas"
	URL    string  `json:"url,omitempty"`
	Text   string  `json:"text,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Room is one cell of the maze grid. Door flags are written only during maze
// construction; the wall metadata may be decorated afterwards.
type Room struct {
	X, Y  int
	Doors Doors
	// Portal marks a room whose portal teleports the player to a random room.
	Portal bool

	wallTextures [4]string
	ads          [4]*Ad
}

// Coord returns the grid coordinate of the room.
func (r *Room) Coord() Coord {
	return Coord{X: r.X, Y: r.Y}
}

// HasDoor reports whether the room has a door in direction d.
func (r *Room) HasDoor(d Direction) bool {
	return r.Doors.Has(d)
}

// SetWallTexture records a texture reference for a wall. Invalid directions are ignored.
func (r *Room) SetWallTexture(d Direction, url string) {
	if d.Valid() {
		r.wallTextures[d] = url
	}
}

// WallTexture returns the texture reference for a wall, or "".
func (r *Room) WallTexture(d Direction) string {
	if !d.Valid() {
		return ""
	}
	return r.wallTextures[d]
}

func (r *Room) HasTexture(d Direction) bool {
	return r.WallTexture(d) != ""
}

// SetAd places an ad panel on a wall. Invalid directions are ignored.
func (r *Room) SetAd(d Direction, ad *Ad) {
	if d.Valid() {
		r.ads[d] = ad
	}
}

// Ad returns the ad panel on a wall, or nil.
func (r *Room) Ad(d Direction) *Ad {
	if !d.Valid() {
		return nil
	}
	return r.ads[d]
}

func (r *Room) HasAd(d Direction) bool {
	return r.Ad(d) != nil
}
