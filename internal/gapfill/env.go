package gapfill

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
)

// MinPlatformVersion is the lowest Go 1.x minor release the tool runs on.
const MinPlatformVersion = 21

// Environment reports the host facts checked before any remote call.
type Environment interface {
	PlatformVersion() int
	HasRequiredDependency(ctx context.Context) bool
}

// Check fails with ErrUnsupportedEnvironment or ErrMissingDependency, in that order.
func Check(ctx context.Context, env Environment) error {
	if v := env.PlatformVersion(); v < MinPlatformVersion {
		return fmt.Errorf("%w: platform version %d, need %d or newer", ErrUnsupportedEnvironment, v, MinPlatformVersion)
	}
	if !env.HasRequiredDependency(ctx) {
		return fmt.Errorf("%w: automation API is not reachable", ErrMissingDependency)
	}
	return nil
}

// Pinger is satisfied by automation.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HostEnvironment checks the running Go toolchain and pings the automation API.
type HostEnvironment struct {
	API Pinger
}

func (h HostEnvironment) PlatformVersion() int {
	return MinorVersion(runtime.Version())
}

func (h HostEnvironment) HasRequiredDependency(ctx context.Context) bool {
	return h.API != nil && h.API.Ping(ctx) == nil
}

// MinorVersion extracts N from "go1.N[.P]". Development builds report math.MaxInt;
// anything unparsable reports 0.
func MinorVersion(v string) int {
	if strings.HasPrefix(v, "devel") {
		return math.MaxInt
	}
	rest, ok := strings.CutPrefix(v, "go1.")
	if !ok {
		return 0
	}
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		rest = rest[:end]
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0
	}
	return n
}
