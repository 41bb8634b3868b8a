package main

import (
	"encoding/json"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
)

// metaSymbol is the module global holding the embedded metadata JSON; the
// inspect command reads it back out of built shared objects.
const metaSymbol = "__cedar_meta"

type moduleMeta struct {
	Functions map[string]string `json:"functions"`
}

// buildMeta records the source-level signature of every declared
// function.
func buildMeta(statements []Stmt) moduleMeta {
	meta := moduleMeta{Functions: map[string]string{}}

	for _, stmt := range statements {
		decl, ok := stmt.(*FunctionDecl)
		if !ok {
			continue
		}

		params := make([]string, len(decl.Params))
		for i, param := range decl.Params {
			params[i] = strings.ToLower(param.Type.String())
		}

		meta.Functions[decl.Name] = "func(" + strings.Join(params, ", ") + ") -> " +
			strings.ToLower(decl.ReturnType.String())
	}

	return meta
}

func registerMeta(meta moduleMeta, m *ir.Module) {
	data, err := json.Marshal(meta)
	if err != nil {
		panic(err)
	}

	g := m.NewGlobalDef(metaSymbol, constant.NewCharArray(append(data, 0)))
	g.Immutable = true
}
