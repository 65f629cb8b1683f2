package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommand returns the program and arguments that open url on the given GOOS.
func browserCommand(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, fmt.Errorf("%w: cannot open a browser on %s", ErrNotImplemented, goos)
	}
}

// OpenBrowser opens url in the default system browser without waiting for it to exit.
//
// Callers print the URL as well, since a headless session has nowhere to open it.
func OpenBrowser(url string) error {
	name, args, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}

	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
