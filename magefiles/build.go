//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Binary compiles the engine and testbed into ./bin.
func (Build) Binary() error {
	fmt.Println("Build engine...")
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/hyperion", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Vet runs static analysis across the module.
func (Build) Vet() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Test runs the test suites.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
