package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func sampleDocument() Document {
	return Document{
		Start:        "0.0000_0.0000_0.0000_0.0000",
		Goal:         "5.0000_5.0000_0.0000_0.0000",
		BestGoalNode: "4.9000_4.9000_0.0000_0.0000",
		CostKey:      "best_path_time",
		Cost:         12.5,
		BestPathRaw:  []string{"0.0000_0.0000_0.0000_0.0000", "4.9000_4.9000_0.0000_0.0000", "5.0000_5.0000_0.0000_0.0000"},
		Graph: map[string]string{
			"0.0000_0.0000_0.0000_0.0000": "",
			"4.9000_4.9000_0.0000_0.0000": "0.0000_0.0000_0.0000_0.0000",
		},
	}
}

func TestRoundTripPreservesCostKey(t *testing.T) {
	doc := sampleDocument()
	data, err := doc.MarshalJSON()
	test.That(t, err, test.ShouldBeNil)

	var got Document
	test.That(t, got.UnmarshalJSON(data), test.ShouldBeNil)
	test.That(t, got.CostKey, test.ShouldEqual, "best_path_time")
	test.That(t, got.Cost, test.ShouldAlmostEqual, 12.5)
	test.That(t, got.Start, test.ShouldEqual, doc.Start)
	test.That(t, got.Graph["4.9000_4.9000_0.0000_0.0000"], test.ShouldEqual, "0.0000_0.0000_0.0000_0.0000")
}

func TestWriterNamesFileWithIterationPrefix(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "run1")
	test.That(t, w.Write(42, sampleDocument()), test.ShouldBeNil)

	_, err := os.Stat(filepath.Join(dir, "42_run1.json"))
	test.That(t, err, test.ShouldBeNil)
}

func TestReaderLatestPicksHighestPrefix(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "run1")
	test.That(t, w.Write(10, sampleDocument()), test.ShouldBeNil)
	test.That(t, w.Write(200, sampleDocument()), test.ShouldBeNil)
	test.That(t, w.Write(30, sampleDocument()), test.ShouldBeNil)

	r := NewReader(dir)
	_, iteration, err := r.Latest()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, iteration, test.ShouldEqual, 200)
}

func TestReaderLatestOnEmptyDirReturnsErrNoCheckpoint(t *testing.T) {
	dir := t.TempDir()
	r := NewReader(dir)
	_, _, err := r.Latest()
	test.That(t, err, test.ShouldEqual, ErrNoCheckpoint)
}

func TestReaderLatestOnMalformedFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	test.That(t, os.WriteFile(filepath.Join(dir, "5_run1.json"), []byte("{not json"), 0o644), test.ShouldBeNil)

	r := NewReader(dir)
	_, _, err := r.Latest()
	test.That(t, err, test.ShouldNotBeNil)
}
