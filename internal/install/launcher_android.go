//go:build android

package install

import (
	"context"
	"fmt"
	"os/exec"
)

const nativeInstall = true

// systemLauncher drives the activity manager.
type systemLauncher struct{}

func (systemLauncher) Launch(ctx context.Context, intent Intent) error {
	out, err := exec.CommandContext(ctx, "am", intent.Args()...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("am start: %w: %s", err, out)
	}
	return nil
}

func (l systemLauncher) Open(ctx context.Context, url string) error {
	return l.Launch(ctx, Intent{Action: ActionView, Data: url})
}
