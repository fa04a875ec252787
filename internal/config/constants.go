package config

// SourceFileExt is the extension of serialized translation units.
const SourceFileExt = ".gml.yaml"

// Package paths with fixed meaning.
const (
	SysPackage     = "sys"
	LangPackage    = "sys.lang"
	PreludePackage = "sys.prelude"
)

// PreludeSymbols are copied into the prelude in addition to every symbol of
// LangPackage.
var PreludeSymbols = []string{
	"sys.Console.println",
	"sys.Console.print",
	"sys.Console.printf",
}

// Built-in class names
const (
	AnyTypeName      = "Any"
	VoidTypeName     = "Void"
	NilTypeName      = "Nil"
	IntTypeName      = "Int"
	FloatTypeName    = "Float"
	BoolTypeName     = "Bool"
	CharTypeName     = "Char"
	StringTypeName   = "String"
	FunctionTypeName = "Function"
	ListTypeName     = "List"
	DictTypeName     = "Dict"
)

// Script (annotation) names
const (
	NameScript         = "name"
	SingletonScript    = "singleton"
	MixinScript        = "mixin"
	LoggerScript       = "logger"
	StaticMethodScript = "static_method"
)

// Names of members synthesized by scripts.
const (
	GetClassNameFunc  = "getClassName"
	InstanceFunc      = "instance"
	LoggerVar         = "logger"
	LoggerClass       = "Logger"
	LoggingClass      = "Logging"
	GetLoggerFunc     = "getLogger"
	DestructorPrefix  = "~"
	ThisName          = "this"
	DefaultEntryPoint = "main"
)

// Generic parameter names of the built-in collections.
const (
	ListItemParam  = "T"
	DictKeyParam   = "K"
	DictValueParam = "V"
)
