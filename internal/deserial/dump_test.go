package deserial

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
)

// dumpNode renders a Node tree for failure output. Plain struct diffing on a
// tree this deep (pointers, recursive Seq/Map fields) produces unreadable
// testify diffs; spew.Sdump gives a readable nested rendering instead, the
// same role go-spew plays transitively inside testify's own Equal failures.
func dumpNode(n *Node) string {
	return spew.Sdump(n)
}

func TestDumpNodeRendersTree(t *testing.T) {
	n := parse(t, "a: [1, two, null]\n")
	out := dumpNode(n)
	assert.Contains(t, out, "MappingKind")
	assert.Contains(t, out, "two")
}
