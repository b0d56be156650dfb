// Package logging sets up the process-wide structured logger. It replaces
// the teacher's bare log.Printf/fmt.Println calls (cmd/server/main.go,
// jobs/broadcaster/broadcaster.go) with go.uber.org/zap, matching the
// logging library the rest of the retrieved pack uses for production
// services (handikong-gopherex/exec/grpc/logx).
package logging

import "go.uber.org/zap"

// New builds a production zap.Logger. debug switches to a development
// encoder with caller info, useful when replaying recorded test fixtures.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
