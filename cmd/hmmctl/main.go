// Command hmmctl drives a heap arena from the command line: it initializes
// the allocator, replays alloc/free scripts against it, and reports the
// resulting block layout.
package main

func main() {
	execute()
}
