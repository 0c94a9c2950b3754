// winq queries live Windows system state: processes, threads, registry keys
// and values, and power schemes.
package main

func main() {
	execute()
}
