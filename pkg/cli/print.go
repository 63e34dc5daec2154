package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fautty/fautty/pkg/mock"
)

func printHeaders(w io.Writer, h mock.Headers) {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, strings.Join(h[name], ", "))
	}
}

func printBody(w io.Writer, body []byte) {
	if len(body) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s\n", body)
}
