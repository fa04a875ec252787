package ast

// Kind tags every node. Abstract kinds never appear on a node; they only
// serve as fallback steps in dispatch chains.
type Kind int

const (
	// Abstract kinds
	KindNode Kind = iota
	KindExpr
	KindStmt
	KindDef
	KindType
	KindTypeClass
	KindLiteral
	KindGenericParam
	KindGenericArg

	// Structure
	KindProject
	KindPackage
	KindUnit
	KindImport
	KindScript

	// Definitions
	KindClass
	KindLibClass
	KindCaseClass
	KindExtension
	KindFunc
	KindLibFunc
	KindVar
	KindParam
	KindEnum
	KindEnumItem
	KindTypeDef

	// Generics
	KindTypeParam
	KindVariadicParam
	KindLiteralParam
	KindTypeArg
	KindVariadicArg
	KindLiteralArg

	// Types
	KindUserType
	KindFuncSpec

	// Expressions
	KindIdent
	KindPrimitive
	KindNil
	KindThis
	KindListLiteral
	KindDictLiteral
	KindDictItem
	KindStringEval
	KindCall
	KindNamedArg
	KindAttr
	KindSubscript
	KindBinary
	KindUnary
	KindIfElse
	KindClosure
	KindGenericExpr
	KindTypeCast

	// Statements
	KindBody
	KindBlock
	KindReturn
	KindBreak
	KindContinue
	KindIf
	KindIfBranch
	KindWhile
	KindForEach
	KindAssign
	KindExprStmt
	KindSwitch
	KindCaseEntry
	KindAssert

	kindCount
)

var kindNames = [...]string{
	KindNode:          "Node",
	KindExpr:          "Expr",
	KindStmt:          "Stmt",
	KindDef:           "Def",
	KindType:          "Type",
	KindTypeClass:     "TypeClass",
	KindLiteral:       "Literal",
	KindGenericParam:  "GenericParam",
	KindGenericArg:    "GenericArg",
	KindProject:       "Project",
	KindPackage:       "Package",
	KindUnit:          "Unit",
	KindImport:        "Import",
	KindScript:        "Script",
	KindClass:         "Class",
	KindLibClass:      "LibClass",
	KindCaseClass:     "CaseClass",
	KindExtension:     "Extension",
	KindFunc:          "Func",
	KindLibFunc:       "LibFunc",
	KindVar:           "Var",
	KindParam:         "Param",
	KindEnum:          "Enum",
	KindEnumItem:      "EnumItem",
	KindTypeDef:       "TypeDef",
	KindTypeParam:     "TypeParam",
	KindVariadicParam: "VariadicParam",
	KindLiteralParam:  "LiteralParam",
	KindTypeArg:       "TypeArg",
	KindVariadicArg:   "VariadicArg",
	KindLiteralArg:    "LiteralArg",
	KindUserType:      "UserType",
	KindFuncSpec:      "FuncSpec",
	KindIdent:         "Ident",
	KindPrimitive:     "Primitive",
	KindNil:           "Nil",
	KindThis:          "This",
	KindListLiteral:   "ListLiteral",
	KindDictLiteral:   "DictLiteral",
	KindDictItem:      "DictItem",
	KindStringEval:    "StringEval",
	KindCall:          "Call",
	KindNamedArg:      "NamedArg",
	KindAttr:          "Attr",
	KindSubscript:     "Subscript",
	KindBinary:        "Binary",
	KindUnary:         "Unary",
	KindIfElse:        "IfElse",
	KindClosure:       "Closure",
	KindGenericExpr:   "GenericExpr",
	KindTypeCast:      "TypeCast",
	KindBody:          "Body",
	KindBlock:         "Block",
	KindReturn:        "Return",
	KindBreak:         "Break",
	KindContinue:      "Continue",
	KindIf:            "If",
	KindIfBranch:      "IfBranch",
	KindWhile:         "While",
	KindForEach:       "ForEach",
	KindAssign:        "Assign",
	KindExprStmt:      "ExprStmt",
	KindSwitch:        "Switch",
	KindCaseEntry:     "CaseEntry",
	KindAssert:        "Assert",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// kindBases lists the direct bases of each kind in priority order.
var kindBases = map[Kind][]Kind{
	KindExpr:          {KindNode},
	KindStmt:          {KindNode},
	KindDef:           {KindNode},
	KindType:          {KindNode},
	KindTypeClass:     {KindNode},
	KindLiteral:       {KindExpr},
	KindGenericParam:  {KindNode},
	KindGenericArg:    {KindNode},
	KindProject:       {KindNode},
	KindPackage:       {KindNode},
	KindUnit:          {KindNode},
	KindImport:        {KindNode},
	KindScript:        {KindNode},
	KindClass:         {KindDef, KindTypeClass},
	KindLibClass:      {KindClass},
	KindCaseClass:     {KindClass},
	KindExtension:     {KindDef},
	KindFunc:          {KindDef},
	KindLibFunc:       {KindFunc},
	KindVar:           {KindDef, KindStmt},
	KindParam:         {KindDef},
	KindEnum:          {KindDef, KindTypeClass},
	KindEnumItem:      {KindDef},
	KindTypeDef:       {KindDef},
	KindTypeParam:     {KindGenericParam},
	KindVariadicParam: {KindGenericParam},
	KindLiteralParam:  {KindGenericParam},
	KindTypeArg:       {KindGenericArg},
	KindVariadicArg:   {KindGenericArg},
	KindLiteralArg:    {KindGenericArg},
	KindUserType:      {KindType},
	KindFuncSpec:      {KindType},
	KindIdent:         {KindExpr},
	KindPrimitive:     {KindLiteral},
	KindNil:           {KindLiteral},
	KindThis:          {KindExpr},
	KindListLiteral:   {KindLiteral},
	KindDictLiteral:   {KindLiteral},
	KindDictItem:      {KindNode},
	KindStringEval:    {KindLiteral},
	KindCall:          {KindExpr},
	KindNamedArg:      {KindNode},
	KindAttr:          {KindExpr},
	KindSubscript:     {KindExpr},
	KindBinary:        {KindExpr},
	KindUnary:         {KindExpr},
	KindIfElse:        {KindExpr},
	KindClosure:       {KindExpr},
	KindGenericExpr:   {KindExpr},
	KindTypeCast:      {KindExpr},
	KindBody:          {KindStmt},
	KindBlock:         {KindStmt},
	KindReturn:        {KindStmt},
	KindBreak:         {KindStmt},
	KindContinue:      {KindStmt},
	KindIf:            {KindStmt},
	KindIfBranch:      {KindNode},
	KindWhile:         {KindStmt},
	KindForEach:       {KindStmt},
	KindAssign:        {KindStmt},
	KindExprStmt:      {KindStmt},
	KindSwitch:        {KindStmt, KindExpr},
	KindCaseEntry:     {KindNode},
	KindAssert:        {KindStmt},
}

var chains [kindCount][]Kind

func init() {
	for k := Kind(0); k < kindCount; k++ {
		chains[k] = buildChain(k)
	}
}

// buildChain flattens the base graph depth-first, most-derived first, each
// kind appearing once at its first position.
func buildChain(k Kind) []Kind {
	var out []Kind
	seen := map[Kind]bool{}
	var walk func(Kind)
	walk = func(k Kind) {
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, k)
		for _, b := range kindBases[k] {
			walk(b)
		}
	}
	walk(k)
	return out
}

// Chain returns the dispatch fallback chain of k. The slice is shared and
// must not be modified.
func Chain(k Kind) []Kind {
	if k < 0 || k >= kindCount {
		return nil
	}
	return chains[k]
}

// IsA reports whether base appears in the chain of k.
func IsA(k, base Kind) bool {
	for _, c := range Chain(k) {
		if c == base {
			return true
		}
	}
	return false
}
