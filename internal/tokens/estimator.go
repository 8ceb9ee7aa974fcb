// Package tokens estimates prompt sizes with the cl100k_base encoding used by
// the GPT-3.5/4 and ada-002 deployments.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// load encodings from the embedded BPE files instead of the network
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

const encodingName = "cl100k_base"

type Estimator struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

var (
	instance *Estimator
	once     sync.Once
	initErr  error
)

// GetEstimator returns the shared Estimator, loading the encoding on first use.
func GetEstimator() (*Estimator, error) {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			initErr = err
			return
		}
		instance = &Estimator{encoding: enc}
	})
	if initErr != nil {
		return nil, initErr
	}
	return instance, nil
}

func (e *Estimator) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.encoding.Encode(text, nil, nil))
}

func (e *Estimator) CountTokensBatch(texts []string) int {
	total := 0
	for _, text := range texts {
		total += e.CountTokens(text)
	}
	return total
}
