// Package registry provides the central "glue" for the block system.
//
// Compiled-in blocks are collected in a Static registry, populated by
// modules at startup. For every request, Build merges them with any freshly
// compiled dynamic blocks into a BlocksDescription: the catalog of validated
// manifests keyed by type identifier that the workflow compiler resolves
// steps against.
//
// DiscoverConnections derives, from a catalog, which block parameters can
// receive which kinds and which parameters take primitive literals. Describe
// bundles the catalog, the kinds, both connection maps and the expression
// language description into the answer to a describe-blocks query.
package registry
