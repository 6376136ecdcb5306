package logging

import (
	"context"
	"fmt"
	"strings"
)

// GooseLogger adapts a Logger to the goose.Logger interface so migration
// output goes through the same structured sink.
type GooseLogger struct {
	L Logger
}

func (g GooseLogger) Printf(format string, v ...any) {
	g.L.Debug(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}

// Fatalf is logged at error level; goose reports the failure to the caller
// through its returned error as well, so the process is not stopped here.
func (g GooseLogger) Fatalf(format string, v ...any) {
	g.L.Error(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}
