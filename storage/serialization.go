// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/mus-format/mus-go/varint"
)

// MarshalVector serializes a float32 vector such as a partition centroid.
func MarshalVector(vec []float32) []byte {
	buf := make([]byte, core.Float32SliceMUS.Size(vec))
	core.Float32SliceMUS.Marshal(vec, buf)
	return buf
}

// UnmarshalVector deserializes a vector written by MarshalVector.
func UnmarshalVector(data []byte) ([]float32, error) {
	vec, _, err := core.Float32SliceMUS.Unmarshal(data)
	return vec, err
}

// MarshalEmbedding serializes a FusedEmbedding to bytes.
func MarshalEmbedding(e *core.FusedEmbedding) []byte {
	buf := make([]byte, core.FusedEmbeddingMUS.Size(*e))
	core.FusedEmbeddingMUS.Marshal(*e, buf)
	return buf
}

// UnmarshalEmbedding deserializes a FusedEmbedding from bytes.
func UnmarshalEmbedding(data []byte) (*core.FusedEmbedding, error) {
	embedding, _, err := core.FusedEmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &embedding, nil
}

// MarshalSchema serializes a CollectionSchema to bytes.
func MarshalSchema(s core.CollectionSchema) []byte {
	buf := make([]byte, core.CollectionSchemaMUS.Size(s))
	core.CollectionSchemaMUS.Marshal(s, buf)
	return buf
}

// UnmarshalSchema deserializes a CollectionSchema from bytes.
func UnmarshalSchema(data []byte) (core.CollectionSchema, error) {
	s, _, err := core.CollectionSchemaMUS.Unmarshal(data)
	return s, err
}

// MarshalUint32 serializes a small integer such as a partition number.
func MarshalUint32(v uint32) []byte {
	buf := make([]byte, varint.Uint32.Size(v))
	varint.Uint32.Marshal(v, buf)
	return buf
}

// UnmarshalUint32 deserializes a value written by MarshalUint32.
func UnmarshalUint32(data []byte) (uint32, error) {
	v, _, err := varint.Uint32.Unmarshal(data)
	return v, err
}
