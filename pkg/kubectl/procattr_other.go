//go:build !unix

package kubectl

import "os/exec"

func detachProcessGroup(cmd *exec.Cmd) {}
