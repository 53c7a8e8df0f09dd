package workspace

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

type EnvTreeNode struct {
	Name     string
	Children []*EnvTreeNode
	File     string // relative path for files, empty for directories
}

func BuildEnvTree(paths []string) *EnvTreeNode {
	root := &EnvTreeNode{Name: "."}

	for _, p := range paths {
		parts := strings.Split(filepath.ToSlash(p), "/")
		cur := root
		for i, part := range parts {
			if i == len(parts)-1 {
				cur.Children = append(cur.Children, &EnvTreeNode{Name: part, File: p})
				break
			}
			cur = cur.dir(part)
		}
	}

	SortEnvTree(root)
	return root
}

func (n *EnvTreeNode) dir(name string) *EnvTreeNode {
	for _, ch := range n.Children {
		if ch.Name == name && ch.File == "" {
			return ch
		}
	}
	next := &EnvTreeNode{Name: name}
	n.Children = append(n.Children, next)
	return next
}

// SortEnvTree orders files before directories, each alphabetically.
func SortEnvTree(node *EnvTreeNode) {
	sort.Slice(node.Children, func(i, j int) bool {
		ci, cj := node.Children[i], node.Children[j]
		if (ci.File != "") != (cj.File != "") {
			return ci.File != ""
		}
		return ci.Name < cj.Name
	})
	for _, ch := range node.Children {
		SortEnvTree(ch)
	}
}

// PrintEnvTree renders the tree below node. label decorates file names,
// e.g. with a variable count; it may be nil.
func PrintEnvTree(w io.Writer, node *EnvTreeNode, label func(file string) string) {
	printTree(w, node, "", label)
}

func printTree(w io.Writer, node *EnvTreeNode, prefix string, label func(string) string) {
	for i, ch := range node.Children {
		last := i == len(node.Children)-1
		conn, childPrefix := "├─ ", prefix+"│  "
		if last {
			conn, childPrefix = "└─ ", prefix+"   "
		}
		name := ch.Name
		if ch.File != "" && label != nil {
			if extra := label(ch.File); extra != "" {
				name += " " + extra
			}
		}
		fmt.Fprintln(w, prefix+conn+name)
		printTree(w, ch, childPrefix, label)
	}
}
