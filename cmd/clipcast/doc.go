// Command clipcast turns web articles into narrated videos. It can run as a
// one-shot renderer or serve the HTTP API used by other frontends.
package main
