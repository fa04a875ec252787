// Package modules declares the built-in library and loads units from disk.
package modules

import (
	"github.com/funvibe/gml/internal/config"
)

// LibraryClass is one built-in class. Methods are signature strings; every
// method is implemented by the native registered under "Class.method".
type LibraryClass struct {
	Name    string
	Params  []string
	Methods []string
}

// LibraryPackage groups the built-in classes of one package path.
type LibraryPackage struct {
	Path    string
	Classes []LibraryClass
}

var libraries []LibraryPackage

// RegisterLibrary adds a built-in package. It is meant for init functions.
func RegisterLibrary(p LibraryPackage) {
	libraries = append(libraries, p)
}

// Libraries returns the registered built-in packages in registration order.
func Libraries() []LibraryPackage { return libraries }

// NativeKeys lists the native key of every declared library method.
func NativeKeys() []string {
	var keys []string
	for _, p := range libraries {
		for _, c := range p.Classes {
			for _, m := range c.Methods {
				keys = append(keys, c.Name+"."+methodName(m))
			}
		}
	}
	return keys
}

func init() {
	RegisterLibrary(langPackage())
	RegisterLibrary(sysPackage())
}

func langPackage() LibraryPackage {
	return LibraryPackage{
		Path: config.LangPackage,
		Classes: []LibraryClass{
			{Name: config.AnyTypeName, Methods: []string{
				"toString() => String",
			}},
			{Name: config.VoidTypeName},
			{Name: config.NilTypeName},
			{Name: config.IntTypeName, Methods: []string{
				"toString() => String",
				"toFloat() => Float",
				"abs() => Int",
				"max(other: Int) => Int",
				"min(other: Int) => Int",
				"times(body: (Int) => Void)",
				"static parse(text: String) => Int",
			}},
			{Name: config.FloatTypeName, Methods: []string{
				"toString() => String",
				"toInt() => Int",
				"round() => Int",
				"floor() => Int",
				"abs() => Float",
				"static parse(text: String) => Float",
			}},
			{Name: config.BoolTypeName, Methods: []string{
				"toString() => String",
			}},
			{Name: config.CharTypeName, Methods: []string{
				"toString() => String",
				"code() => Int",
				"isDigit() => Bool",
				"isLetter() => Bool",
				"upper() => Char",
			}},
			{Name: config.StringTypeName, Methods: []string{
				"size() => Int",
				"toString() => String",
				"upper() => String",
				"lower() => String",
				"trim() => String",
				"contains(part: String) => Bool",
				"startsWith(prefix: String) => Bool",
				"endsWith(suffix: String) => Bool",
				"indexOf(part: String) => Int",
				"substring(from: Int, to: Int) => String",
				"split(sep: String) => List<String>",
				"replace(old: String, replacement: String) => String",
				"repeat(count: Int) => String",
				"toInt() => Int",
				"toFloat() => Float",
				"chars() => List<Char>",
				"static join(sep: String, parts: List<String>) => String",
			}},
			{Name: config.FunctionTypeName},
			{Name: config.ListTypeName, Params: []string{config.ListItemParam}, Methods: []string{
				"size() => Int",
				"isEmpty() => Bool",
				"append(item: T)",
				"extend(items: List<T>)",
				"get(index: Int) => T",
				"set(index: Int, item: T)",
				"remove(index: Int) => T",
				"contains(item: T) => Bool",
				"indexOf(item: T) => Int",
				"first() => T",
				"last() => T",
				"reverse() => List<T>",
				"clear()",
				"each(body: (T) => Void)",
				"join(sep: String) => String",
				"toString() => String",
			}},
			{Name: config.DictTypeName, Params: []string{config.DictKeyParam, config.DictValueParam}, Methods: []string{
				"size() => Int",
				"isEmpty() => Bool",
				"get(key: K) => V",
				"getOr(key: K, fallback: V) => V",
				"set(key: K, value: V)",
				"contains(key: K) => Bool",
				"remove(key: K)",
				"keys() => List<K>",
				"values() => List<V>",
				"each(body: (K, V) => Void)",
				"toString() => String",
			}},
		},
	}
}

func sysPackage() LibraryPackage {
	return LibraryPackage{
		Path: config.SysPackage,
		Classes: []LibraryClass{
			{Name: "Console", Methods: []string{
				"static println(value: Any)",
				"static print(value: Any)",
				"static printf(format: String, args: Any...)",
			}},
			{Name: config.LoggingClass, Methods: []string{
				"static getLogger(name: String) => Logger",
				"static setLevel(level: String)",
			}},
			{Name: config.LoggerClass, Methods: []string{
				"name() => String",
				"debug(msg: String)",
				"info(msg: String)",
				"warn(msg: String)",
				"error(msg: String)",
			}},
			{Name: "Env", Methods: []string{
				"static get(name: String) => String",
				"static getOr(name: String, fallback: String) => String",
				"static has(name: String) => Bool",
			}},
			{Name: "Path", Methods: []string{
				"static join(parts: String...) => String",
				"static base(path: String) => String",
				"static dir(path: String) => String",
				"static ext(path: String) => String",
				"static abs(path: String) => String",
			}},
			{Name: "System", Methods: []string{
				"static now() => Int",
				"static args() => List<String>",
				"static fail(msg: String)",
			}},
			{Name: "YamlElement", Methods: []string{
				"static parse(text: String) => YamlElement",
				"get(key: String) => YamlElement",
				"at(index: Int) => YamlElement",
				"has(key: String) => Bool",
				"size() => Int",
				"keys() => List<String>",
				"isMap() => Bool",
				"isList() => Bool",
				"asString() => String",
				"asInt() => Int",
				"asFloat() => Float",
				"asBool() => Bool",
				"dump() => String",
			}},
		},
	}
}
