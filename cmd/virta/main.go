// Virta - Azure to NetBox Ingestion Collector
// Enumerate. Map. Emit. Done.
package main

func main() {
	Execute()
}
