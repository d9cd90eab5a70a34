//go:build !android

package install

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

const nativeInstall = false

var errNoIntents = errors.New("intents are only supported on android")

// systemLauncher opens URLs with the desktop's default handler.
type systemLauncher struct{}

func (systemLauncher) Launch(ctx context.Context, intent Intent) error {
	return errNoIntents
}

func (systemLauncher) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, args := openCommand(runtime.GOOS, url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}

func openCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}
