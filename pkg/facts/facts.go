// Package facts discovers environment-derived generation variables:
// author identity, username, and the host OS/architecture.
package facts

import (
	"os"
	"os/user"
	"runtime"

	"github.com/arthur-debert/stencil/pkg/logging"
)

// Facts are the environment-derived values seeded into every variable
// context at run start.
type Facts struct {
	Author   string
	Username string
	OSArch   string
}

// Gather collects facts from the process environment. Missing values
// degrade to empty strings rather than failing generation.
func Gather() Facts {
	logger := logging.GetLogger("facts")

	f := Facts{
		OSArch: runtime.GOOS + "-" + runtime.GOARCH,
	}

	if current, err := user.Current(); err == nil {
		f.Username = current.Username
		f.Author = current.Name
		if f.Author == "" {
			f.Author = current.Username
		}
	}
	// Git identity overrides the OS account name when present
	for _, key := range []string{"GIT_AUTHOR_NAME", "GIT_COMMITTER_NAME"} {
		if v := os.Getenv(key); v != "" {
			f.Author = v
			break
		}
	}

	logger.Debug().
		Str("author", f.Author).
		Str("username", f.Username).
		Str("osArch", f.OSArch).
		Msg("gathered environment facts")
	return f
}
