// shared/models/location.go
package models

// Location is a point in a named world. Yaw and pitch are carried so a
// teleport can also orient the player.
type Location struct {
	World string  `bson:"world" json:"World"`
	X     float64 `bson:"x" json:"X"`
	Y     float64 `bson:"y" json:"Y"`
	Z     float64 `bson:"z" json:"Z"`
	Yaw   float32 `bson:"yaw" json:"Yaw"`
	Pitch float32 `bson:"pitch" json:"Pitch"`
}
