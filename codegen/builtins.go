package codegen

import (
	"skeinc/ast"
	"skeinc/sem"
)

// dirOps maps a directional relation to its write and read opcodes.
var dirOps = map[string][2]Opcode{
	"left":  {OpWLEFT, OpRLEFT},
	"right": {OpWRIGHT, OpRRIGHT},
	"up":    {OpWUP, OpRUP},
	"down":  {OpWDOWN, OpRDOWN},
}

// lowerBuiltin emits a builtin relation in the mode the resolver selected.
// Solvable relations are emitted as the inverse computation of the unbound
// operand: `plus{a=x, b=2, c=10}` with x unbound subtracts.
func (ne *nodeEmitter) lowerBuiltin(app *ast.Application, b *sem.Builtin) {
	if app.ModeIndex < 0 {
		return
	}

	args := make(map[string]*ast.Arg)
	for _, arg := range app.Args {
		args[arg.Name] = arg
	}

	eval := func(op string) { ne.evalTerm(args[op].Value) }
	store := func(op string) {
		vt := args[op].Value.(*ast.VarTerm)
		ne.storeVar(vt.Name, vt.Span())
	}
	binary := func(x, y string, op Opcode, out string) {
		eval(x)
		eval(y)
		ne.emit(op, 0)
		store(out)
	}

	mode := app.ModeIndex

	switch b.Name {
	case "plus":
		// a + b = c
		switch mode {
		case 0:
			binary("a", "b", OpADD, "c")
		case 1:
			binary("c", "a", OpSUB, "b")
		default:
			binary("c", "b", OpSUB, "a")
		}
	case "minus":
		// a - b = c
		switch mode {
		case 0:
			binary("a", "b", OpSUB, "c")
		case 1:
			binary("a", "c", OpSUB, "b")
		default:
			binary("b", "c", OpADD, "a")
		}
	case "times":
		// a * b = c
		switch mode {
		case 0:
			binary("a", "b", OpMUL, "c")
		case 1:
			binary("c", "a", OpDIV, "b")
		default:
			binary("c", "b", OpDIV, "a")
		}
	case "greater":
		eval("a")
		eval("b")
		ne.emit(OpGT, 0)
		ne.emitFail(OpBRNZ)
	case "band":
		binary("a", "b", OpAND, "c")
	case "bor":
		binary("a", "b", OpOR, "c")
	case "bxor":
		// a ^ b = c: any operand solves from the other two.
		switch mode {
		case 0:
			binary("a", "b", OpXOR, "c")
		case 1:
			binary("a", "c", OpXOR, "b")
		default:
			binary("b", "c", OpXOR, "a")
		}
	case "bnot":
		if mode == 0 {
			eval("a")
			ne.emit(OpNOT, 0)
			store("b")
		} else {
			eval("b")
			ne.emit(OpNOT, 0)
			store("a")
		}
	case "shl":
		binary("a", "b", OpSHL, "c")
	case "shr":
		binary("a", "b", OpSHR, "c")
	case "send":
		port := args["port"].Value.(*ast.LitTerm).Value
		eval("val")
		ne.emit(OpSEND, port)
		ne.e.ports = append(ne.e.ports, portUse{
			coord: ne.coord, port: port, span: app.Span(), write: true,
		})
	case "recv":
		port := args["port"].Value.(*ast.LitTerm).Value
		ne.emit(OpRECV, port)
		store("val")
		ne.e.ports = append(ne.e.ports, portUse{
			coord: ne.coord, port: port, span: app.Span(),
		})
	case "left", "right", "up", "down":
		ops := dirOps[b.Name]
		if mode == 0 {
			eval("val")
			ne.emit(ops[0], 0)
		} else {
			ne.emit(ops[1], 0)
			store("val")
		}

		ne.e.dirs = append(ne.e.dirs, dirUse{
			coord: ne.coord, dir: b.Name, span: app.Span(), write: mode == 0,
		})
	case "f18a.push":
		eval("a")
	case "f18a.pop":
		store("a")
	}
}
