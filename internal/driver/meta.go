package driver

import (
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"

	"palladium/internal/mono"
	"palladium/internal/sema"
	"palladium/internal/source"
	"palladium/internal/types"
)

// Meta is the machine-readable build artifact behind --emit-meta: the
// monomorphized surface of the program plus input hashes, for ABI
// consumers such as linkers and bindings generators. It is an output,
// not a cache; nothing reads it back during compilation.
type Meta struct {
	Version   int            `msgpack:"version"`
	Files     []MetaFile     `msgpack:"files"`
	Functions []MetaFunction `msgpack:"functions"`
	Structs   []MetaStruct   `msgpack:"structs"`
	Enums     []MetaEnum     `msgpack:"enums"`
}

type MetaFile struct {
	Path   string `msgpack:"path"`
	SHA256 string `msgpack:"sha256"`
}

type MetaFunction struct {
	Name   string   `msgpack:"name"`
	Params []string `msgpack:"params"`
	Result string   `msgpack:"result"`
}

type MetaStruct struct {
	Name   string      `msgpack:"name"`
	Fields []MetaField `msgpack:"fields"`
}

type MetaField struct {
	Name string `msgpack:"name"`
	Type string `msgpack:"type"`
}

type MetaEnum struct {
	Name     string   `msgpack:"name"`
	Variants []string `msgpack:"variants"`
}

const metaVersion = 1

// buildMeta serializes the program surface. Instance slices arrive
// sorted by name and files in load order, so equal inputs produce
// equal bytes.
func buildMeta(s *Session, checked *sema.Result, prog *mono.Program) ([]byte, error) {
	m := Meta{Version: metaVersion}

	for i := 0; i < s.FS.Len(); i++ {
		f := s.FS.Get(source.FileID(i))
		m.Files = append(m.Files, MetaFile{
			Path:   f.Path,
			SHA256: hex.EncodeToString(f.Hash[:]),
		})
	}

	format := func(id types.TypeID) string {
		return checked.Types.Format(s.Builder.Strings, id)
	}
	for _, fn := range prog.Fns {
		mf := MetaFunction{Name: fn.Name, Result: format(fn.Result)}
		for _, p := range fn.Params {
			mf.Params = append(mf.Params, format(p))
		}
		m.Functions = append(m.Functions, mf)
	}
	for _, st := range prog.Structs {
		ms := MetaStruct{Name: st.Name}
		for _, f := range st.Fields {
			ms.Fields = append(ms.Fields, MetaField{Name: f.Name, Type: format(f.Type)})
		}
		m.Structs = append(m.Structs, ms)
	}
	for _, en := range prog.Enums {
		me := MetaEnum{Name: en.Name}
		for _, v := range en.Variants {
			me.Variants = append(me.Variants, v.Name)
		}
		m.Enums = append(m.Enums, me)
	}
	return msgpack.Marshal(&m)
}
