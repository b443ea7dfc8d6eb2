package tubegen

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/openvasc/vasmesh/pkg/mesh"
)

// stlTriangle is the 50-byte binary STL record: face normal, three
// corners, and the unused attribute word.
type stlTriangle struct {
	Normal [3]float32
	V1     [3]float32
	V2     [3]float32
	V3     [3]float32
	Attr   uint16
}

// WriteSTL writes the mesh as binary STL. Face normals are computed
// from the winding, not taken from the per-vertex normals, since STL
// has no vertex normal concept.
func WriteSTL(w io.Writer, m *mesh.SurfaceMesh) error {
	var header [80]byte
	copy(header[:], "vasmesh surface export")
	if _, err := w.Write(header[:]); err != nil {
		return errors.Wrap(err, "tubegen: stl header")
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(m.FaceCount())); err != nil {
		return errors.Wrap(err, "tubegen: stl face count")
	}

	for f := range m.Faces {
		n := m.FaceNormal(f)
		a, b, c := m.FaceVertices(f)
		record := stlTriangle{
			Normal: [3]float32{float32(n.X), float32(n.Y), float32(n.Z)},
			V1:     [3]float32{float32(a.X), float32(a.Y), float32(a.Z)},
			V2:     [3]float32{float32(b.X), float32(b.Y), float32(b.Z)},
			V3:     [3]float32{float32(c.X), float32(c.Y), float32(c.Z)},
		}
		if err := binary.Write(w, binary.LittleEndian, &record); err != nil {
			return errors.Wrapf(err, "tubegen: stl face %d", f)
		}
	}
	return nil
}
