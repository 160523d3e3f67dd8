package gridindex

import (
	"testing"

	"go.viam.com/test"

	"github.com/basemotion/rrtapf/pose"
)

func TestNearestSingleNode(t *testing.T) {
	reg := pose.NewRegistry()
	root := reg.Intern(pose.New(0, 0, 0))
	idx := New(reg, 1.5, 0, 0)
	idx.Insert(root)

	nearest, err := idx.Nearest(pose.New(10, 0, 10))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, nearest, test.ShouldEqual, root)
}

func TestNearestEmptyIndex(t *testing.T) {
	reg := pose.NewRegistry()
	idx := New(reg, 1.5, 0, 0)
	_, err := idx.Nearest(pose.New(0, 0, 0))
	test.That(t, err, test.ShouldEqual, ErrEmptyIndex)
}

func TestNearestFindsCloserNodeInNextRing(t *testing.T) {
	reg := pose.NewRegistry()
	idx := New(reg, 1.0, 0, 0)

	// A far node in the same cell, and a much closer node in the adjacent
	// cell (one ring out), reproducing the scenario the extra search ring
	// exists to cover.
	far := reg.Intern(pose.New(0.01, 0, 0.01))
	closeNode := reg.Intern(pose.New(0.99, 0, 1.01))
	idx.Insert(far)
	idx.Insert(closeNode)

	query := pose.New(0.95, 0, 0.95)
	nearest, err := idx.Nearest(query)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, nearest, test.ShouldEqual, closeNode)
}

func TestNearReturnsAtLeastCellBlock(t *testing.T) {
	reg := pose.NewRegistry()
	idx := New(reg, 2.0, 0, 0)
	a := reg.Intern(pose.New(0.1, 0, 0.1))
	idx.Insert(a)

	near := idx.Near(pose.New(0.2, 0, 0.2))
	test.That(t, near, test.ShouldContain, a)
}

func TestInsertPlacesInExactBucket(t *testing.T) {
	reg := pose.NewRegistry()
	idx := New(reg, 1.0, -5, -5)
	a := reg.Intern(pose.New(2.4, 0, -3.2))
	idx.Insert(a)

	i, j := idx.cellOf(reg.Lookup(a))
	test.That(t, idx.cells[cellKeyFrom(i, j)], test.ShouldContain, a)
}
