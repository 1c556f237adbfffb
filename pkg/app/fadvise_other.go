//go:build !linux

package app

import "os"

func adviseSequential(_ *os.File) error {
	return nil
}
