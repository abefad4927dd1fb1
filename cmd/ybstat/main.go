/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package main

import "github.com/ybstat/ybstat/pkg/cli"

func main() {
	cli.Execute()
}
