package batch

import (
	"github.com/example/covkit/coverage/codec"
	"github.com/example/covkit/coverage/domain"
	"github.com/example/covkit/internal/config"
	"github.com/example/covkit/internal/snapshot"
)

// LoadData builds the data set of job from its input files or snapshot and
// applies the globalize and filterToCoverage options.
func LoadData(job *config.Job) (*domain.SelectionData, error) {
	data := domain.NewSelectionData()
	if job.Snapshot.Name != "" {
		store, err := snapshot.Open(job.Snapshot.Path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		if err := store.LoadInto(job.Snapshot.Name, data); err != nil {
			return nil, err
		}
	} else if err := codec.Load(job.Inputs, data); err != nil {
		return nil, err
	}

	if job.Globalize {
		data.Globalize()
	}
	if job.FilterToCoverage {
		data.FilterToCoverage()
	}
	return data, nil
}
