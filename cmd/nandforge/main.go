// Command nandforge builds, optimizes, and evaluates a NAND-gate circuit
// for the SHA-256 compression function on a single 512-bit block
// (spec.md). Its subcommands mirror the five-stage pipeline: generate an
// input block, expand word-level values to bits, synthesize the circuit,
// optimize it, and evaluate or differentially verify it.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oisee/nandforge/pkg/bitsig"
	"github.com/oisee/nandforge/pkg/circio"
	"github.com/oisee/nandforge/pkg/dag"
	"github.com/oisee/nandforge/pkg/eval"
	"github.com/oisee/nandforge/pkg/padgen"
	"github.com/oisee/nandforge/pkg/rewrite"
	"github.com/oisee/nandforge/pkg/synth"
	"github.com/oisee/nandforge/pkg/word"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "nandforge: logger init:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	rootCmd := &cobra.Command{
		Use:   "nandforge",
		Short: "Build and optimize a NAND-gate circuit for one SHA-256 compression block",
	}

	rootCmd.AddCommand(
		generateInputCmd(log),
		expandWordsCmd(log),
		synthesizeCmd(log),
		optimizeCmd(log),
		evaluateCmd(log),
		verifyCmd(log),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Errorw("command failed", "error", err)
		os.Exit(1)
	}
}

func generateInputCmd(log *zap.SugaredLogger) *cobra.Command {
	var message, messageHex string
	var random bool
	var wordOut, bitsOut string

	cmd := &cobra.Command{
		Use:   "generate-input",
		Short: "Build a single padded 512-bit input block as input.txt / input-bits.txt",
		RunE: func(cmd *cobra.Command, args []string) error {
			var msg []byte
			switch {
			case random:
				msg = make([]byte, padgen.MaxMessageBytes)
				if _, err := rand.Read(msg); err != nil {
					return fmt.Errorf("generate-input: random message: %w", err)
				}
			case messageHex != "":
				decoded, err := hex.DecodeString(messageHex)
				if err != nil {
					return fmt.Errorf("generate-input: --message-hex: %w", err)
				}
				msg = decoded
			default:
				msg = []byte(message)
			}

			block, err := padgen.Pad(msg)
			if err != nil {
				return fmt.Errorf("generate-input: %w", err)
			}
			words := padgen.Words(block)

			wordEntries := make([]circio.WordEntry, 16)
			bits := make(map[string]bitsig.Bit, bitsig.NumInputWords*bitsig.WordBits)
			for w := 0; w < 16; w++ {
				wb := bitsig.ExpandWord(words[w])
				wordEntries[w] = circio.WordEntry{Label: fmt.Sprintf("W%d", w), Bits: wb}
				for b := 0; b < bitsig.WordBits; b++ {
					bits[bitsig.InputLabel(w, b)] = wb[b]
				}
			}

			if err := circio.WriteWordFile(wordOut, wordEntries); err != nil {
				return err
			}
			if err := circio.WriteBitFile(bitsOut, bits); err != nil {
				return err
			}
			log.Infow("generated input block", "bytes", len(msg), "wordFile", wordOut, "bitsFile", bitsOut)
			return nil
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "ASCII message to pad into the block")
	cmd.Flags().StringVar(&messageHex, "message-hex", "", "Hex-encoded message to pad into the block")
	cmd.Flags().BoolVar(&random, "random", false, "Fill the block with a random 55-byte message")
	cmd.Flags().StringVar(&wordOut, "word-out", "input.txt", "Word-level output path")
	cmd.Flags().StringVar(&bitsOut, "bits-out", "input-bits.txt", "Bit-level output path")
	return cmd
}

func expandWordsCmd(log *zap.SugaredLogger) *cobra.Command {
	var in, out string
	var addConstants bool
	var constantsOut string

	cmd := &cobra.Command{
		Use:   "expand-words",
		Short: "Expand a word-level hex file to its bit-level form",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := circio.ReadWordFile(in)
			if err != nil {
				return fmt.Errorf("expand-words: %w", err)
			}
			bits := make(map[string]bitsig.Bit, len(entries)*bitsig.WordBits)
			for _, e := range entries {
				for b := 0; b < bitsig.WordBits; b++ {
					bits[bitsig.InputLabel(wordIndex(e.Label), b)] = e.Bits[b]
				}
			}
			if err := circio.WriteBitFile(out, bits); err != nil {
				return err
			}
			log.Infow("expanded word file", "in", in, "out", out, "words", len(entries))

			if addConstants {
				constBits := make(map[string]bitsig.Bit, 2+bitsig.NumRoundConsts*bitsig.WordBits+bitsig.NumInitWords*bitsig.WordBits)
				constBits[bitsig.Const0] = bitsig.Zero
				constBits[bitsig.Const1] = bitsig.One
				for k := 0; k < bitsig.NumRoundConsts; k++ {
					wb := bitsig.ExpandWord(synth.RoundConstants[k])
					for b := 0; b < bitsig.WordBits; b++ {
						constBits[bitsig.RoundConstLabel(k, b)] = wb[b]
					}
				}
				for h := 0; h < bitsig.NumInitWords; h++ {
					wb := bitsig.ExpandWord(synth.InitHash[h])
					for b := 0; b < bitsig.WordBits; b++ {
						constBits[bitsig.InitHashLabel(h, b)] = wb[b]
					}
				}
				if err := circio.WriteBitFile(constantsOut, constBits); err != nil {
					return err
				}
				log.Infow("wrote builtin constants bit file", "out", constantsOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "input.txt", "Word-level input file")
	cmd.Flags().StringVarP(&out, "out", "o", "input-bits.txt", "Bit-level output file")
	cmd.Flags().BoolVar(&addConstants, "add-constants", false, "Also emit the builtin K/H-INIT constants as bits")
	cmd.Flags().StringVar(&constantsOut, "constants-out", "constants-bits.txt", "Bit-level constants output path")
	return cmd
}

func synthesizeCmd(log *zap.SugaredLogger) *cobra.Command {
	var functionsOut, nandsOut string

	cmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Generate the word-level description and synthesize it into a NAND circuit",
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := word.Generate()
			if err := circio.WriteFunctionsFile(functionsOut, prog); err != nil {
				return fmt.Errorf("synthesize: %w", err)
			}
			log.Infow("wrote word-level description", "out", functionsOut, "ops", len(prog.Ops))

			g := dag.New()
			if err := synth.PrepareLeaves(g); err != nil {
				return fmt.Errorf("synthesize: %w", err)
			}
			if err := synth.Synthesize(g, prog); err != nil {
				return fmt.Errorf("synthesize: %w", err)
			}
			if err := circio.WriteNandsFile(nandsOut, g); err != nil {
				return fmt.Errorf("synthesize: %w", err)
			}
			log.Infow("synthesized NAND circuit", "out", nandsOut, "gates", countGates(g))
			return nil
		},
	}
	cmd.Flags().StringVar(&functionsOut, "functions-out", "functions.txt", "Word-level circuit output path")
	cmd.Flags().StringVar(&nandsOut, "nands-out", "nands.txt", "Bit-level circuit output path")
	return cmd
}

func optimizeCmd(log *zap.SugaredLogger) *cobra.Command {
	var in, out string
	var maxRounds int

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run the rewrite engine to a fixed point over a synthesized circuit",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := dag.New()
			if err := synth.PrepareLeaves(g); err != nil {
				return fmt.Errorf("optimize: %w", err)
			}
			if err := circio.ReadNandsFile(in, g); err != nil {
				return fmt.Errorf("optimize: %w", err)
			}
			before := countGates(g)

			optimized, err := rewrite.Optimize(g, maxRounds, log)
			if err != nil {
				return fmt.Errorf("optimize: %w", err)
			}
			after := countGates(optimized)

			if err := circio.WriteNandsFile(out, optimized); err != nil {
				return fmt.Errorf("optimize: %w", err)
			}
			log.Infow("optimization complete", "gatesBefore", before, "gatesAfter", after)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "nands.txt", "Input NAND circuit file")
	cmd.Flags().StringVarP(&out, "out", "o", "nands.optimized.txt", "Output NAND circuit file")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 64, "Maximum rewrite rounds before giving up on a fixed point")
	return cmd
}

func evaluateCmd(log *zap.SugaredLogger) *cobra.Command {
	var nandsPath, inputBitsPath string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a NAND circuit against a bit-level input, printing the digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := dag.New()
			if err := synth.PrepareLeaves(g); err != nil {
				return fmt.Errorf("evaluate: %w", err)
			}
			if err := circio.ReadNandsFile(nandsPath, g); err != nil {
				return fmt.Errorf("evaluate: %w", err)
			}
			inputBits, err := circio.ReadBitFile(inputBitsPath)
			if err != nil {
				return fmt.Errorf("evaluate: %w", err)
			}
			result, err := eval.Evaluate(g, eval.Bindings(inputBits))
			if err != nil {
				return fmt.Errorf("evaluate: %w", err)
			}
			digest := result.Digest()
			log.Infow("evaluated circuit", "nands", nandsPath, "digest", digest)
			fmt.Println(digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&nandsPath, "nands", "nands.txt", "NAND circuit file")
	cmd.Flags().StringVar(&inputBitsPath, "input-bits", "input-bits.txt", "Bit-level input bindings file")
	return cmd
}

func verifyCmd(log *zap.SugaredLogger) *cobra.Command {
	var nandsPath string
	var trials, workers int

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Differentially fuzz a NAND circuit against a reference SHA-256 implementation",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := dag.New()
			if err := synth.PrepareLeaves(g); err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			if err := circio.ReadNandsFile(nandsPath, g); err != nil {
				return fmt.Errorf("verify: %w", err)
			}

			report, err := eval.FuzzAgainstReference(g, eval.FuzzConfig{Trials: trials, Workers: workers, Logger: log})
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			if report.Mismatch != nil {
				log.Errorw("verification failed",
					"message", hex.EncodeToString(report.Mismatch.Message),
					"got", report.Mismatch.Got, "want", report.Mismatch.Want)
				return fmt.Errorf("verify: circuit disagreed with reference after %d trials", report.Trials)
			}
			fmt.Printf("verified: %d trials, no mismatch\n", report.Trials)
			return nil
		},
	}
	cmd.Flags().StringVar(&nandsPath, "nands", "nands.txt", "NAND circuit file")
	cmd.Flags().IntVar(&trials, "trials", 1000, "Number of random single-block messages to check")
	cmd.Flags().IntVar(&workers, "workers", 4, "Number of concurrent fuzz workers")
	return cmd
}

func countGates(g *dag.Graph) int {
	n := 0
	for id := dag.NodeID(0); int(id) < g.Len(); id++ {
		if g.Node(id).Kind == dag.KindGate {
			n++
		}
	}
	return n
}

func wordIndex(label string) int {
	var idx int
	fmt.Sscanf(label, "W%d", &idx)
	return idx
}
