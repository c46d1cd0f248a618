// Command dump-tree prints the syntax tree of a source file and the
// functions and classes the parsers locate in it.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mvp-joe/docvault/internal/miner/parsers"
	"github.com/mvp-joe/docvault/internal/syntax"
)

func main() {
	showTree := flag.Bool("tree", false, "print every named node")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("usage: dump-tree [-tree] <file>")
	}
	path := flag.Arg(0)

	lang, ok := syntax.ForPath(path)
	if !ok {
		log.Fatalf("no grammar for %s", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}

	tree, err := syntax.NewRegistry().ParseFile(lang, path, src)
	if err != nil {
		log.Fatal(err)
	}

	if *showTree {
		fmt.Println("=== TREE ===")
		for _, n := range syntax.Collect(tree.Root, func(n *syntax.Node) bool { return n.Named }) {
			fmt.Printf("%s%s\n", strings.Repeat("  ", depth(n)), n)
		}
		fmt.Println()
	}

	p, err := parsers.For(lang)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("=== FUNCTIONS ===")
	for _, e := range parsers.Functions(p, tree) {
		fmt.Printf("  %s(%s) at %s\n", e.Path(), strings.Join(e.Parameters, ", "), e.Node)
	}

	fmt.Println("\n=== CLASSES ===")
	for _, e := range parsers.Classes(p, tree) {
		supers := ""
		if len(e.Superclasses) > 0 {
			supers = " : " + strings.Join(e.Superclasses, ", ")
		}
		fmt.Printf("  %s%s at %s\n", e.Path(), supers, e.Node)
	}
}

func depth(n *syntax.Node) int {
	d := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}
