package badger

import (
	"encoding/binary"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
)

// Key prefixes for different data types. Every key is scoped by collection name.
const (
	collectionPrefix = "vcol:"
	vectorPrefix     = "vvec:"
	centroidPrefix   = "vcen:"
	postingPrefix    = "vpst:"
	assignmentPrefix = "vasg:"
	indexMetaPrefix  = "vidx:"
)

// overflowPartition holds vectors upserted into an index that has no centroids.
// It is probed by every search.
const overflowPartition = ^uint32(0)

// makeCollectionKey generates the key holding a collection's schema.
func makeCollectionKey(name string) []byte {
	return []byte(collectionPrefix + name)
}

// makeIndexMetaKey generates the key marking a built index.
func makeIndexMetaKey(name string) []byte {
	return []byte(indexMetaPrefix + name)
}

// makeScopedPrefix generates prefix:name: for iterating a collection's keys.
func makeScopedPrefix(prefix, name string) []byte {
	return []byte(prefix + name + ":")
}

// makeVectorKey generates a key for a document vector.
// Format: prefix:name:id
func makeVectorKey(name string, id core.ID) []byte {
	p := makeScopedPrefix(vectorPrefix, name)
	buf := make([]byte, len(p)+8)
	offset := copy(buf, p)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeAssignmentKey generates a key recording which partition holds a document.
// Format: prefix:name:id
func makeAssignmentKey(name string, id core.ID) []byte {
	p := makeScopedPrefix(assignmentPrefix, name)
	buf := make([]byte, len(p)+8)
	offset := copy(buf, p)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeCentroidKey generates a key for a partition centroid.
// Format: prefix:name:partition
func makeCentroidKey(name string, partition uint32) []byte {
	p := makeScopedPrefix(centroidPrefix, name)
	buf := make([]byte, len(p)+4)
	offset := copy(buf, p)
	binary.BigEndian.PutUint32(buf[offset:], partition)
	return buf
}

// makePartitionPrefix generates a partial key for iterating one posting list.
// Format: prefix:name:partition
func makePartitionPrefix(name string, partition uint32) []byte {
	p := makeScopedPrefix(postingPrefix, name)
	buf := make([]byte, len(p)+4)
	offset := copy(buf, p)
	binary.BigEndian.PutUint32(buf[offset:], partition)
	return buf
}

// makePostingKey generates a composite key for a posting list entry.
// Format: prefix:name:partition:id
func makePostingKey(name string, partition uint32, id core.ID) []byte {
	p := makePartitionPrefix(name, partition)
	buf := make([]byte, len(p)+8)
	offset := copy(buf, p)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// idFromKey decodes the trailing 8-byte document ID of a key.
func idFromKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// partitionFromKey decodes the trailing 4-byte partition of a centroid key.
func partitionFromKey(key []byte) uint32 {
	return binary.BigEndian.Uint32(key[len(key)-4:])
}

// collectionKeys lists the exact keys owned by a collection.
func collectionKeys(name string) [][]byte {
	return [][]byte{makeCollectionKey(name), makeIndexMetaKey(name)}
}

// collectionPrefixes lists every key prefix owned by a collection.
func collectionPrefixes(name string) [][]byte {
	return [][]byte{
		makeScopedPrefix(vectorPrefix, name),
		makeScopedPrefix(centroidPrefix, name),
		makeScopedPrefix(postingPrefix, name),
		makeScopedPrefix(assignmentPrefix, name),
	}
}
