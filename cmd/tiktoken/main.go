// Command tiktoken encodes, decodes and counts tokens from the command line.
//
// Usage:
//
//	tiktoken [-encoding name | -model name] encode "some text"
//	tiktoken [-encoding name | -model name] decode 9906 1917
//	tiktoken [-encoding name | -model name] count "some text"
//
// With no text/token arguments, input is read from stdin. Vocabularies are
// downloaded on first use and cached (see TIKTOKEN_CACHE_DIR).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/go-tiktoken/codec"
	"github.com/gomlx/go-tiktoken/encodings"
	"github.com/gomlx/go-tiktoken/models"
	"k8s.io/klog/v2"
)

var (
	flagEncoding = flag.String("encoding", "cl100k_base", "Encoding scheme to use.")
	flagModel    = flag.String("model", "", "Model name to resolve the encoding from; overrides -encoding.")
	flagSpecial  = flag.Bool("special", false, "Allow all special tokens when encoding (default rejects them).")

	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	countStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if flag.NArg() < 1 {
		fatalf("usage: tiktoken [flags] encode|decode|count [text or token ids]")
	}

	enc, err := buildEncoding()
	if err != nil {
		fatalf("%+v", err)
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "encode":
		runEncode(enc, readText(args))
	case "count":
		runCount(enc, readText(args))
	case "decode":
		runDecode(enc, args)
	default:
		fatalf("unknown command %q (want encode, decode or count)", cmd)
	}
}

func buildEncoding() (*codec.Codec, error) {
	if *flagModel != "" {
		return models.EncodingForModel(*flagModel)
	}
	return encodings.Get(*flagEncoding)
}

func runEncode(enc *codec.Codec, text string) {
	tokens, err := encode(enc, text)
	if err != nil {
		fatalf("%v", err)
	}
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = strconv.FormatUint(uint64(t), 10)
	}
	fmt.Printf("%s %s\n", labelStyle.Render(enc.Name()+":"), strings.Join(parts, " "))
}

func runCount(enc *codec.Codec, text string) {
	tokens, err := encode(enc, text)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("%s %s\n", labelStyle.Render(enc.Name()+":"), countStyle.Render(strconv.Itoa(len(tokens))))
}

func encode(enc *codec.Codec, text string) ([]codec.Token, error) {
	if *flagSpecial {
		return enc.Encode(text, enc.AllSpecial(), nil)
	}
	return enc.Encode(text, nil, enc.AllSpecial())
}

func runDecode(enc *codec.Codec, args []string) {
	if len(args) == 0 {
		args = strings.Fields(readText(nil))
	}
	tokens := make([]codec.Token, len(args))
	for i, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			fatalf("invalid token id %q", arg)
		}
		tokens[i] = codec.Token(id)
	}
	text, err := enc.DecodeLossy(tokens)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(text)
}

func readText(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatalf("failed to read stdin: %v", err)
	}
	return string(data)
}

func fatalf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
	os.Exit(1)
}
