//go:build !unix

package ytdlp

import "os/exec"

// killTree is a no-op where process groups are unavailable; the drain
// deadline in ExecRunner still bounds how long a cancelled run can hang.
func killTree(cmd *exec.Cmd) {}
