package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/mahdiidarabi/cubicpell-nonce/internal/logger"
	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
	"github.com/mahdiidarabi/cubicpell-nonce/pkg/pellattack"
)

func main() {
	var (
		signaturesFile = flag.String("signatures", "", "Path to signatures file (JSON, CSV or CBOR)")
		format         = flag.String("format", "json", "Signature file format (json, csv or cbor)")
		publicKey      = flag.String("public-key", "", "Public key in hex (element encoding) for verification")
		groupName      = flag.String("group", "cp256", "Group the signatures live in ("+strings.Join(group.Names(), ", ")+")")
		digest         = flag.String("digest", "sha256", "Hash used when a signature has no sigma field")
		leakedIndex    = flag.Int("leaked-index", -1, "Index of the signature whose nonce leaked")
		leakedNonce    = flag.String("leaked-nonce", "", "The leaked nonce (decimal or 0x hex)")
		shared         = flag.Bool("shared", false, "Treat the first four signatures as two keys sharing two nonces")
		nonceBits      = flag.String("nonce-bits", "128,160,192,224,256", "Candidate nonce sizes for the lattice search")
		windows        = flag.String("windows", "2,3,4,6,8", "Signature counts tried by the lattice search")
		numWorkers     = flag.Int("workers", 0, "Number of parallel workers (0 = auto-detect based on CPU cores)")
		logLevel       = flag.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
		pretty         = flag.Bool("pretty", false, "Human-readable log output")
	)
	flag.Parse()

	if *signaturesFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --signatures is required\n")
		flag.Usage()
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = *logLevel
	logCfg.Pretty = *pretty
	log := logger.New(logCfg)

	g, err := group.ByName(*groupName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	hash, err := pellattack.NewHashOracle(pellattack.Digest(*digest))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Set up parser based on format
	var parser pellattack.SignatureParser
	switch *format {
	case "json":
		parser = &pellattack.JSONParser{Hash: hash}
	case "csv":
		parser = &pellattack.CSVParser{Hash: hash}
	case "cbor":
		parser = &pellattack.CBORParser{}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", *format)
		os.Exit(1)
	}

	client := pellattack.NewClient().WithGroup(g).WithParser(parser).WithLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *leakedIndex >= 0:
		nonce, ok := parseInt(*leakedNonce)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: --leaked-nonce must be an integer\n")
			os.Exit(1)
		}
		fmt.Printf("Using leaked nonce of signature %d\n", *leakedIndex)

		result, err := client.RecoverKeyWithKnownNonce(ctx, *signaturesFile, *leakedIndex, nonce, *publicKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(result)

	case *shared:
		sigs, err := parser.ParseSignatures(*signaturesFile, g)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(sigs) < 4 {
			fmt.Fprintf(os.Stderr, "Error: --shared needs four signatures, got %d\n", len(sigs))
			os.Exit(1)
		}
		x1, x2, err := client.RecoverSharedNonceKeys([4]*pellattack.Signature{sigs[0], sigs[1], sigs[2], sigs[3]})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n[+] Recovered both private keys:\n")
		fmt.Printf("    Key 1: %s\n", x1.String())
		fmt.Printf("    Key 2: %s\n", x2.String())

	default:
		bits, err := parseList(*nonceBits)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing nonce-bits: %v\n", err)
			os.Exit(1)
		}
		wins, err := parseList(*windows)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing windows: %v\n", err)
			os.Exit(1)
		}

		strategy := pellattack.NewSmartStrategy(g)
		for _, phase := range strategy.Phases {
			if lattice, ok := phase.(*pellattack.LatticeStrategy); ok {
				lattice.WithSearchConfig(pellattack.SearchConfig{
					NonceBits:  bits,
					Windows:    wins,
					NumWorkers: *numWorkers,
				})
			}
		}
		client = client.WithStrategy(strategy.WithLogger(log))

		fmt.Printf("Loading signatures from %s...\n", *signaturesFile)
		result, err := client.RecoverKey(ctx, *signaturesFile, *publicKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(result)
	}
}

func printResult(result *pellattack.RecoveryResult) {
	fmt.Printf("\n[+] Successfully recovered private key!\n")
	fmt.Printf("    Private key: %s\n", result.PrivateKey.String())
	fmt.Printf("    Method: %s\n", result.Method)
	fmt.Printf("    Signatures: %v\n", result.Signatures)
	if result.NonceBits > 0 {
		fmt.Printf("    Nonce bound: 2^%d\n", result.NonceBits)
	}
	if result.Verified {
		fmt.Println("    ✓ Verified against public key!")
	}
}

func parseInt(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return new(big.Int).SetString(s[2:], 16)
	}
	return new(big.Int).SetString(s, 10)
}

func parseList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
