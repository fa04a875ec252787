package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/gml/internal/config"
	"github.com/funvibe/gml/internal/contract"
)

// programLogger backs sys.Logger values.
type programLogger struct {
	name string
	log  *slog.Logger
}

func init() {
	register("Console", map[string]NativeFunc{
		"println": func(ev *Evaluator, _ Object, args []Object) (Object, error) {
			_, err := fmt.Fprintln(ev.Out, args[0].Inspect())
			return nil, err
		},
		"print": func(ev *Evaluator, _ Object, args []Object) (Object, error) {
			_, err := fmt.Fprint(ev.Out, args[0].Inspect())
			return nil, err
		},
		"printf": func(ev *Evaluator, _ Object, args []Object) (Object, error) {
			values := make([]any, 0, len(args)-1)
			for _, a := range args[1:] {
				values = append(values, hostValue(a))
			}
			_, err := fmt.Fprintf(ev.Out, strOf(args[0]), values...)
			return nil, err
		},
	})
	register(config.LoggingClass, map[string]NativeFunc{
		config.GetLoggerFunc: func(ev *Evaluator, _ Object, args []Object) (Object, error) {
			name := strOf(args[0])
			return &HostObject{Class: config.LoggerClass, Value: &programLogger{
				name: name,
				log:  ev.programLog.With("logger", name),
			}}, nil
		},
		"setLevel": func(ev *Evaluator, _ Object, args []Object) (Object, error) {
			ev.programLevel.Set(config.ParseLevel(strOf(args[0])))
			return nil, nil
		},
	})
	logAt := func(level slog.Level) NativeFunc {
		return func(_ *Evaluator, this Object, args []Object) (Object, error) {
			l := hostOf[*programLogger](this)
			l.log.Log(context.Background(), level, strOf(args[0]))
			return nil, nil
		}
	}
	register(config.LoggerClass, map[string]NativeFunc{
		"name": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &String{Value: hostOf[*programLogger](this).name}, nil
		},
		"debug": logAt(slog.LevelDebug),
		"info":  logAt(slog.LevelInfo),
		"warn":  logAt(slog.LevelWarn),
		"error": logAt(slog.LevelError),
	})
	register("Env", map[string]NativeFunc{
		"get": func(_ *Evaluator, _ Object, args []Object) (Object, error) {
			v, ok := os.LookupEnv(strOf(args[0]))
			if !ok {
				return nil, errors.Errorf("environment variable %s is not set", strOf(args[0]))
			}
			return &String{Value: v}, nil
		},
		"getOr": func(_ *Evaluator, _ Object, args []Object) (Object, error) {
			if v, ok := os.LookupEnv(strOf(args[0])); ok {
				return &String{Value: v}, nil
			}
			return args[1], nil
		},
		"has": func(_ *Evaluator, _ Object, args []Object) (Object, error) {
			_, ok := os.LookupEnv(strOf(args[0]))
			return nativeBool(ok), nil
		},
	})
	pathOp := func(fn func(string) string) NativeFunc {
		return func(_ *Evaluator, _ Object, args []Object) (Object, error) {
			return &String{Value: fn(strOf(args[0]))}, nil
		}
	}
	register("Path", map[string]NativeFunc{
		"join": func(_ *Evaluator, _ Object, args []Object) (Object, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = strOf(a)
			}
			return &String{Value: filepath.Join(parts...)}, nil
		},
		"base": pathOp(filepath.Base),
		"dir":  pathOp(filepath.Dir),
		"ext":  pathOp(filepath.Ext),
		"abs": func(_ *Evaluator, _ Object, args []Object) (Object, error) {
			p, err := filepath.Abs(strOf(args[0]))
			if err != nil {
				return nil, err
			}
			return &String{Value: p}, nil
		},
	})
	register("System", map[string]NativeFunc{
		"now": func(*Evaluator, Object, []Object) (Object, error) {
			return &Integer{Value: time.Now().UnixMilli()}, nil
		},
		"args": func(ev *Evaluator, _ Object, _ []Object) (Object, error) {
			out := &List{}
			for _, a := range ev.Args {
				out.Elements = append(out.Elements, &String{Value: a})
			}
			return out, nil
		},
		"fail": func(_ *Evaluator, _ Object, args []Object) (Object, error) {
			return nil, errors.New(strOf(args[0]))
		},
	})
	register("YamlElement", yamlNatives())
}

func yamlNatives() map[string]NativeFunc {
	elem := func(n *yaml.Node) Object { return &HostObject{Class: "YamlElement", Value: n} }
	scalar := func(this Object) *yaml.Node {
		n := hostOf[*yaml.Node](this)
		contract.Assertf(n.Kind == yaml.ScalarNode, "YAML line %d is not a scalar", n.Line)
		return n
	}
	return map[string]NativeFunc{
		"parse": func(_ *Evaluator, _ Object, args []Object) (Object, error) {
			var doc yaml.Node
			if err := yaml.Unmarshal([]byte(strOf(args[0])), &doc); err != nil {
				return nil, errors.Wrap(err, "parse YAML")
			}
			if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
				return elem(doc.Content[0]), nil
			}
			return elem(&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}), nil
		},
		"get": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			if v := yamlChild(hostOf[*yaml.Node](this), strOf(args[0])); v != nil {
				return elem(v), nil
			}
			return nil, errors.Errorf("YAML key %s not found", strOf(args[0]))
		},
		"at": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			n := hostOf[*yaml.Node](this)
			if n.Kind != yaml.SequenceNode {
				return nil, errors.Errorf("YAML line %d is not a list", n.Line)
			}
			i, err := checkIndex(args[0], len(n.Content))
			if err != nil {
				return nil, err
			}
			return elem(n.Content[i]), nil
		},
		"has": func(_ *Evaluator, this Object, args []Object) (Object, error) {
			return nativeBool(yamlChild(hostOf[*yaml.Node](this), strOf(args[0])) != nil), nil
		},
		"size": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			n := hostOf[*yaml.Node](this)
			switch n.Kind {
			case yaml.MappingNode:
				return &Integer{Value: int64(len(n.Content) / 2)}, nil
			case yaml.SequenceNode:
				return &Integer{Value: int64(len(n.Content))}, nil
			}
			return &Integer{}, nil
		},
		"keys": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			n := hostOf[*yaml.Node](this)
			out := &List{}
			if n.Kind == yaml.MappingNode {
				for i := 0; i+1 < len(n.Content); i += 2 {
					out.Elements = append(out.Elements, &String{Value: n.Content[i].Value})
				}
			}
			return out, nil
		},
		"isMap": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return nativeBool(hostOf[*yaml.Node](this).Kind == yaml.MappingNode), nil
		},
		"isList": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return nativeBool(hostOf[*yaml.Node](this).Kind == yaml.SequenceNode), nil
		},
		"asString": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			return &String{Value: scalar(this).Value}, nil
		},
		"asInt": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			v, err := strconv.ParseInt(scalar(this).Value, 0, 64)
			if err != nil {
				return nil, errors.Wrap(err, "YAML asInt")
			}
			return &Integer{Value: v}, nil
		},
		"asFloat": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			v, err := strconv.ParseFloat(scalar(this).Value, 64)
			if err != nil {
				return nil, errors.Wrap(err, "YAML asFloat")
			}
			return &Float{Value: v}, nil
		},
		"asBool": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			var b bool
			if err := scalar(this).Decode(&b); err != nil {
				return nil, errors.Wrap(err, "YAML asBool")
			}
			return nativeBool(b), nil
		},
		"dump": func(_ *Evaluator, this Object, _ []Object) (Object, error) {
			out, err := yaml.Marshal(hostOf[*yaml.Node](this))
			if err != nil {
				return nil, errors.Wrap(err, "dump YAML")
			}
			return &String{Value: strings.TrimSuffix(string(out), "\n")}, nil
		},
	}
}

func yamlChild(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func hostOf[T any](o Object) T {
	h, ok := o.(*HostObject)
	contract.Assertf(ok, "%s is not a host object", repr(o))
	v, ok := h.Value.(T)
	contract.Assertf(ok, "%s holds %T", h.Class, h.Value)
	return v
}

// hostValue converts a value for fmt verbs.
func hostValue(o Object) any {
	switch x := o.(type) {
	case *Integer:
		return x.Value
	case *Float:
		return x.Value
	case *Boolean:
		return x.Value
	case *Char:
		return x.Value
	case *String:
		return x.Value
	}
	return o.Inspect()
}
