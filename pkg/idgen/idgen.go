// Package idgen genera IDs ordenables por tiempo (snowflake) para los movimientos del ledger.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator produce IDs únicos y crecientes dentro de un mismo nodo.
type Generator struct {
	node *snowflake.Node
}

// New crea un generador para el nodo indicado (0-1023). Cada réplica del servicio necesita un nodo distinto.
func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("crear nodo snowflake %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// MustNew igual que New pero entra en pánico si el nodo es inválido (tests y seeds).
func MustNew(nodeID int64) *Generator {
	g, err := New(nodeID)
	if err != nil {
		panic(err)
	}
	return g
}

// Next devuelve el siguiente ID en forma decimal (string para no perder precisión en JSON).
func (g *Generator) Next() string {
	return g.node.Generate().String()
}
