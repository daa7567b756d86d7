package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/viper"
	"golang.org/x/term"
)

func isJSON() bool {
	return viper.GetBool("json")
}

// styled reports whether out should get colored, human output.
func styled(out io.Writer) bool {
	if isJSON() {
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
