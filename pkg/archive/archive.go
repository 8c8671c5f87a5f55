// Package archive keeps a record of every compilation.
//
// A [Record] summarizes one compile session: which job produced which
// programs, how long each is expected to run, and a checksum of the exact
// text written. Operators use it to match a program found on the machine
// controller with the job file and compiler version that produced it.
//
// [Nop] discards records and is the default. [Mongo] stores them in a
// MongoDB collection.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/femtopgm/pkg/buildinfo"
	"github.com/matzehuels/femtopgm/pkg/pipeline"
)

// Archive stores compile records.
type Archive interface {
	Save(ctx context.Context, r Record) error
	Close(ctx context.Context) error
}

// Record is the summary of one compile session.
type Record struct {
	ID        string          `bson:"_id" json:"id"`
	Session   string          `bson:"session" json:"session"`
	Stem      string          `bson:"stem" json:"stem"`
	Lab       string          `bson:"lab" json:"lab"`
	Warp      bool            `bson:"warp" json:"warp"`
	Compiler  buildinfo.Info  `bson:"compiler" json:"compiler"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	Seconds   float64         `bson:"seconds" json:"seconds"`
	Programs  []ProgramRecord `bson:"programs" json:"programs"`
}

// ProgramRecord summarizes one program of a session.
type ProgramRecord struct {
	Name         string  `bson:"name" json:"name"`
	Class        string  `bson:"class" json:"class"`
	Instructions int     `bson:"instructions" json:"instructions"`
	Seconds      float64 `bson:"seconds" json:"seconds"`
	SHA256       string  `bson:"sha256" json:"sha256"`
}

// NewRecord summarizes a compile result. opts must be the validated
// options the result was compiled with.
func NewRecord(res *pipeline.Result, opts pipeline.Options) Record {
	r := Record{
		ID:        uuid.NewString(),
		Session:   res.Session,
		Stem:      opts.Filename,
		Lab:       opts.Lab,
		Warp:      opts.Warp,
		Compiler:  buildinfo.Get(),
		CreatedAt: time.Now().UTC(),
		Seconds:   res.Stats.Seconds,
		Programs:  make([]ProgramRecord, 0, len(res.Programs)),
	}
	for _, p := range res.Programs {
		sum := sha256.Sum256([]byte(p.Text()))
		r.Programs = append(r.Programs, ProgramRecord{
			Name:         p.Name,
			Class:        string(p.Class),
			Instructions: len(p.Instructions),
			Seconds:      p.Seconds,
			SHA256:       hex.EncodeToString(sum[:]),
		})
	}
	return r
}

// Nop discards records.
type Nop struct{}

func (Nop) Save(context.Context, Record) error { return nil }
func (Nop) Close(context.Context) error        { return nil }

var _ Archive = Nop{}
