package main

import (
	git "github.com/gitcore/git-go"
)

func loadRepository(cfg *flags) (*git.Repository, error) {
	return git.OpenRepository(cfg.C)
}
