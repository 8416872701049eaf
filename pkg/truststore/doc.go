// Package truststore loads trusted certificate material from a file and
// turns it into a certificate pool for TLS client connections.
//
// Three container formats are understood:
//
//   - PEM: one or more CERTIFICATE blocks. Used when the type is empty.
//   - PKCS12 (alias P12): certificate bags decoded with golang.org/x/crypto/pkcs12.
//   - JKS: Java key stores decoded with github.com/pavlo-v-chernykh/keystore-go/v4.
//     Trusted certificate entries and private key certificate chains both
//     contribute to the pool.
//
// Usage:
//
//	pool, err := truststore.Load("/etc/search/truststore.jks", "JKS", "changeit")
//	if err != nil {
//	    // errors.As(err, &truststore.ErrLoad{}) for I/O and format failures
//	}
//	transport.TLSClientConfig = truststore.TLSConfig(pool)
//
// The file is read once per call. Load never falls back to the system roots:
// the returned pool contains only what the file holds.
package truststore
