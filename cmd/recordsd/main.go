// recordsd CLI - serves filterable record collections and the pages that
// browse them.
package main

import "github.com/getmockd/recordsd/pkg/cli"

func main() {
	cli.Execute()
}
