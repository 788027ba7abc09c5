// Command karaoke is the command line client for karaoked.
//
// It manages room queues, the now-playing pointer and the song catalog over
// the daemon's HTTP API. Output is rendered as tables by default and as JSON
// with --json.
package main
