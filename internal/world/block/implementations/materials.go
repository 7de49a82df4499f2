package implementations

import "github.com/annel0/blockaccess/internal/world/block"

// Статичные материалы без реакции на физику
var (
	Air   = &block.Material{ID: block.AirBlockID, Name: "air"}
	Stone = &block.Material{ID: block.StoneBlockID, Name: "stone", Solid: true}
	Dirt  = &block.Material{ID: block.DirtBlockID, Name: "dirt", Solid: true}
	Tree  = &block.Material{ID: block.TreeBlockID, Name: "tree", Solid: true}
	Chest = &block.Material{ID: block.ChestBlockID, Name: "chest", Solid: true}
	Door  = &block.Material{ID: block.DoorBlockID, Name: "door", Solid: true}
)
