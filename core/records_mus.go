package core

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Int64.Marshal(int64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Int64.Size(int64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

// Float32SliceMUS encodes a vector as a varint length followed by fixed
// four-byte elements.
var Float32SliceMUS = float32SliceMUS{}

type float32SliceMUS struct{}

func (s float32SliceMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func (s float32SliceMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := s.length(bs)
	if err != nil {
		return
	}
	v = make([]float32, length)
	var n1 int
	for i := range v {
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (s float32SliceMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return
}

func (s float32SliceMUS) Skip(bs []byte) (n int, err error) {
	length, n, err := s.length(bs)
	if err != nil {
		return
	}
	return n + length*raw.Float32.Size(0), nil
}

// length reads the element count and checks the elements fit in bs.
func (s float32SliceMUS) length(bs []byte) (length, n int, err error) {
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 {
		err = ErrNegativeLength
		return
	}
	if length > (len(bs)-n)/raw.Float32.Size(0) {
		err = mus.ErrTooSmallByteSlice
	}
	return
}

var FusedEmbeddingMUS = fusedEmbeddingMUS{}

type fusedEmbeddingMUS struct{}

func (s fusedEmbeddingMUS) Marshal(v FusedEmbedding, bs []byte) (n int) {
	n = IDMUS.Marshal(v.DocumentID, bs)
	n += Float32SliceMUS.Marshal(v.Vector, bs[n:])
	return n + raw.Uint64.Marshal(v.Fingerprint, bs[n:])
}

func (s fusedEmbeddingMUS) Unmarshal(bs []byte) (v FusedEmbedding, n int, err error) {
	v.DocumentID, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Vector, n1, err = Float32SliceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Fingerprint, n1, err = raw.Uint64.Unmarshal(bs[n:])
	n += n1
	return
}

func (s fusedEmbeddingMUS) Size(v FusedEmbedding) (size int) {
	size = IDMUS.Size(v.DocumentID)
	size += Float32SliceMUS.Size(v.Vector)
	return size + raw.Uint64.Size(v.Fingerprint)
}

func (s fusedEmbeddingMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = Float32SliceMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.Uint64.Skip(bs[n:])
	n += n1
	return
}

var CollectionSchemaMUS = collectionSchemaMUS{}

type collectionSchemaMUS struct{}

func (s collectionSchemaMUS) Marshal(v CollectionSchema, bs []byte) (n int) {
	n = ord.String.Marshal(v.Name, bs)
	n += ord.String.Marshal(v.PrimaryField, bs[n:])
	n += ord.String.Marshal(v.VectorField, bs[n:])
	n += varint.Int.Marshal(v.Dim, bs[n:])
	return n + ord.String.Marshal(string(v.Metric), bs[n:])
}

func (s collectionSchemaMUS) Unmarshal(bs []byte) (v CollectionSchema, n int, err error) {
	v.Name, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.PrimaryField, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.VectorField, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Dim, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var metric string
	metric, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	v.Metric = Metric(metric)
	return
}

func (s collectionSchemaMUS) Size(v CollectionSchema) (size int) {
	size = ord.String.Size(v.Name)
	size += ord.String.Size(v.PrimaryField)
	size += ord.String.Size(v.VectorField)
	size += varint.Int.Size(v.Dim)
	return size + ord.String.Size(string(v.Metric))
}

func (s collectionSchemaMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	for _, skip := range []func([]byte) (int, error){ord.String.Skip, ord.String.Skip, varint.Int.Skip, ord.String.Skip} {
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}
