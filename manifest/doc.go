// Package manifest reads and rewrites a Serverless Framework service
// definition (serverless.yml), preserving key order.
package manifest
