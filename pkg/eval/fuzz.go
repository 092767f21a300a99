package eval

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/minio/sha256-simd"
	"go.uber.org/zap"

	"github.com/oisee/nandforge/pkg/bitsig"
	"github.com/oisee/nandforge/pkg/dag"
	"github.com/oisee/nandforge/pkg/padgen"
)

// FuzzConfig is a trial count, a worker count, and a logger, every field
// optional: Trials and Workers default to 1000 and 4, and a nil Logger
// disables progress logging.
type FuzzConfig struct {
	Trials  int
	Workers int
	Logger  *zap.SugaredLogger
}

// FuzzReport is the outcome of one differential run.
type FuzzReport struct {
	Trials   int
	Mismatch *Mismatch
}

// Mismatch records the first input for which the circuit's digest disagreed
// with the reference implementation.
type Mismatch struct {
	Message []byte
	Got     string
	Want    string
}

// FuzzAgainstReference evaluates g with random single-block messages and
// compares the digest against github.com/minio/sha256-simd, differentially
// testing the synthesized circuit against its reference semantics. Every
// trial runs fully concrete (no Unknown bits), since a differential check
// against a real hash function needs a real answer. Work is fanned out
// over a worker pool: atomic trial counter, mutex-guarded first mismatch,
// periodic progress logging.
func FuzzAgainstReference(g *dag.Graph, cfg FuzzConfig) (*FuzzReport, error) {
	if cfg.Trials <= 0 {
		cfg.Trials = 1000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	var (
		counter  int64
		mu       sync.Mutex
		mismatch *Mismatch
		stop     int32
	)

	var wg sync.WaitGroup
	errCh := make(chan error, cfg.Workers)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	start := time.Now()
	done := make(chan struct{})
	if cfg.Logger != nil {
		go func() {
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					n := atomic.LoadInt64(&counter)
					elapsed := time.Since(start)
					rate := float64(n) / elapsed.Seconds()
					cfg.Logger.Infow("fuzz progress", "trials", n, "elapsed", elapsed, "rate", rate)
				}
			}
		}()
	}

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		seed := rand.Uint64()
		go func(seed uint64) {
			defer wg.Done()
			src := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			for {
				if atomic.LoadInt32(&stop) != 0 {
					return
				}
				n := atomic.AddInt64(&counter, 1)
				if n > int64(cfg.Trials) {
					return
				}
				msg := randomMessage(src)
				got, want, err := runOne(g, msg)
				if err != nil {
					select {
					case errCh <- err:
					default:
					}
					atomic.StoreInt32(&stop, 1)
					return
				}
				if got != want {
					mu.Lock()
					if mismatch == nil {
						mismatch = &Mismatch{Message: msg, Got: got, Want: want}
					}
					mu.Unlock()
					atomic.StoreInt32(&stop, 1)
					return
				}
			}
		}(seed)
	}

	wg.Wait()
	close(done)

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	// Each worker claims one counter value past cfg.Trials before it exits,
	// so cap the count at the trials actually run.
	trials := atomic.LoadInt64(&counter)
	if trials > int64(cfg.Trials) {
		trials = int64(cfg.Trials)
	}
	return &FuzzReport{Trials: int(trials), Mismatch: mismatch}, nil
}

func randomMessage(src *rand.Rand) []byte {
	n := src.IntN(padgen.MaxMessageBytes + 1)
	msg := make([]byte, n)
	for i := range msg {
		msg[i] = byte(src.IntN(256))
	}
	return msg
}

func runOne(g *dag.Graph, msg []byte) (got, want string, err error) {
	block, err := padgen.Pad(msg)
	if err != nil {
		return "", "", err
	}
	words := padgen.Words(block)

	bindings := make(Bindings, bitsig.NumInputWords*bitsig.WordBits)
	for w := 0; w < bitsig.NumInputWords; w++ {
		bits := bitsig.ExpandWord(words[w])
		for b := 0; b < bitsig.WordBits; b++ {
			bindings[bitsig.InputLabel(w, b)] = bits[b]
		}
	}

	result, err := Evaluate(g, bindings)
	if err != nil {
		return "", "", fmt.Errorf("eval: %w", err)
	}

	sum := sha256.Sum256(msg)
	return result.Digest(), fmt.Sprintf("%x", sum), nil
}
