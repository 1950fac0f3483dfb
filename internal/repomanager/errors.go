package repomanager

import "errors"

var ErrNoLocalMirror = errors.New("no local mirror maintained for vcs")
