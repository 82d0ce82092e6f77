package scraper

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"legiscrape/lib/person"
)

// Sink receives every record a run emits.
type Sink interface {
	Put(ctx context.Context, rec *person.Record) error
}

// JSONLines writes one JSON object per record.
type JSONLines struct {
	mutex   sync.Mutex
	encoder *json.Encoder
}

func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{encoder: json.NewEncoder(w)}
}

func (j *JSONLines) Put(_ context.Context, rec *person.Record) error {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return j.encoder.Encode(rec)
}

// Collect keeps records in memory.
type Collect struct {
	Records []*person.Record
}

func (c *Collect) Put(_ context.Context, rec *person.Record) error {
	c.Records = append(c.Records, rec)
	return nil
}

type tee []Sink

func (t tee) Put(ctx context.Context, rec *person.Record) error {
	for _, s := range t {
		err := s.Put(ctx, rec)
		if err != nil {
			return err
		}
	}
	return nil
}

// Tee sends every record to each non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	var out tee
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
