// Package archive expands downloaded release archives on disk.
//
// Extraction overwrites existing contents and rejects entries whose paths
// would escape the extraction root.
package archive
