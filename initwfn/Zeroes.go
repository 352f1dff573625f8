package initwfn

import (
	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
)

// ZeroesConfig implements a configuration of a zero weight initializer
type ZeroesConfig struct{}

// NewZeroes returns a new zeroes weight intializer
func NewZeroes() (*InitWFn, error) {
	config := ZeroesConfig{}

	return newInitWFn(config)
}

// Type returns the type of the weight initializer created using this
// config
func (z ZeroesConfig) Type() Type {
	return Zeroes
}

// Create creates the Gorgonia weight initializer from this
// initializer config. The source is unused.
func (z ZeroesConfig) Create(rand.Source) G.InitWFn {
	return G.Zeroes()
}
