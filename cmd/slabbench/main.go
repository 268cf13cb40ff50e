// Command slabbench drives a slab arena the way a task scheduler would and
// reports how the arena's pages are used.
package main

func main() {
	execute()
}
