package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pthm/persist"
	"github.com/pthm/persist/lib/cipher"
	"github.com/pthm/persist/lib/encoding"
	"github.com/spf13/pflag"
)

const version = "0.1.0"

func main() {
	cfg, err := persist.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(os.Args[1:], os.Stdout, os.Stderr, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer, cfg persist.Config) error {
	if len(args) < 1 {
		printUsage(stderr)
		return errors.New("missing command")
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "keygen":
		return runKeygen(stdout)
	case "encode":
		return runEncode(args, stdout, logger, cfg)
	case "decode":
		return runDecode(args, stdout, logger, cfg)
	case "inspect":
		return runInspect(args, stdout)
	case "version":
		fmt.Fprintf(stdout, "persist version %s\n", version)
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `persist - bounded interaction tokens

Usage:
  persist <command> [arguments]

Commands:
  keygen                    Print a random cipher key
  encode [flags] TAG JSON   Produce a token for TAG carrying the JSON payload
  decode [flags] TOKEN      Print the mode, tag and payload of a token
  inspect TAG JSON          Print the token length in each mode
  version                   Print version
  help                      Show this help

Flags for encode and decode:
  --key string    cipher key (default $PERSIST_CIPHER_KEY)
  --mode string   token mode for encode: plain, signed or encrypted
                  (default $PERSIST_MODE or encrypted)

Examples:
  persist keygen
  persist encode --key "$KEY" buy '{"item":42}'
  persist decode --key "$KEY" 'pe~...'`)
}

func runKeygen(stdout io.Writer) error {
	key, err := cipher.GenerateKey()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, base64.RawURLEncoding.EncodeToString(key))
	return nil
}

func runEncode(args []string, stdout io.Writer, logger *slog.Logger, cfg persist.Config) error {
	var key, modeName string

	flagSet := pflag.NewFlagSet("encode", pflag.ContinueOnError)
	flagSet.StringVar(&key, "key", cfg.CipherKey, "cipher key")
	flagSet.StringVar(&modeName, "mode", cfg.Mode.String(), "token mode: plain, signed or encrypted")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() != 2 {
		return errors.New("encode takes TAG and JSON arguments")
	}
	tag, payload := flagSet.Arg(0), flagSet.Arg(1)

	mode, err := encoding.ParseMode(modeName)
	if err != nil {
		return err
	}
	if !json.Valid([]byte(payload)) {
		return fmt.Errorf("payload is not valid JSON: %s", payload)
	}

	codec, err := newCodec(key, mode, logger)
	if err != nil {
		return err
	}

	token, err := codec.Encode(tag, json.RawMessage(payload))
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func runDecode(args []string, stdout io.Writer, logger *slog.Logger, cfg persist.Config) error {
	var key string

	flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	flagSet.StringVar(&key, "key", cfg.CipherKey, "cipher key")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() != 1 {
		return errors.New("decode takes a TOKEN argument")
	}

	codec, err := newCodec(key, encoding.ModePlain, logger)
	if err != nil {
		return err
	}

	token, err := codec.Decode(flagSet.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "mode:    %s\n", token.Mode)
	fmt.Fprintf(stdout, "tag:     %s\n", token.Tag)
	fmt.Fprintf(stdout, "payload: %s\n", token.Payload)
	return nil
}

func runInspect(args []string, stdout io.Writer) error {
	if len(args) != 2 {
		return errors.New("inspect takes TAG and JSON arguments")
	}
	tag, payload := args[0], args[1]
	if !json.Valid([]byte(payload)) {
		return fmt.Errorf("payload is not valid JSON: %s", payload)
	}

	// Lengths do not depend on the key.
	c, err := cipher.Generate()
	if err != nil {
		return err
	}
	codec, err := encoding.NewCodec(c, encoding.ModeEncrypted)
	if err != nil {
		return err
	}

	for _, mode := range []encoding.Mode{encoding.ModePlain, encoding.ModeSigned, encoding.ModeEncrypted} {
		n, err := codec.Measure(mode, tag, json.RawMessage(payload))
		if err != nil {
			return err
		}
		status := "ok"
		if n > encoding.MaxLen {
			status = "too large"
		}
		fmt.Fprintf(stdout, "%-10s %3d/%d %s\n", mode, n, encoding.MaxLen, status)
	}
	return nil
}

// newCodec builds a codec for key. The mode only matters for encoding;
// decoding accepts every mode the key can open.
func newCodec(key string, mode encoding.Mode, logger *slog.Logger) (*encoding.Codec, error) {
	if key == "" {
		logger.Warn("no cipher key given, using a random key; signed and encrypted tokens will not decode elsewhere")
		c, err := cipher.Generate()
		if err != nil {
			return nil, err
		}
		return encoding.NewCodec(c, mode)
	}

	c, err := cipher.New([]byte(key))
	if err != nil {
		return nil, err
	}
	logger.Debug("using configured cipher key", "mode", mode)
	return encoding.NewCodec(c, mode)
}
