package script

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"quill/internal/debug"
	"quill/internal/object"
	"quill/internal/tag"
)

// DelayTracker gates a timed queue's advancement. Stateless contract: the
// queue polls it once per heartbeat and clears it when it stops reporting
// delayed.
type DelayTracker interface {
	IsDelayed() bool
}

// Scheduler is the heartbeat surface commands use for background work. Async
// runs on a worker goroutine; OnTick marshals a closure back onto the
// heartbeat goroutine, the only place queue and entry state may be mutated.
type Scheduler interface {
	OnTick(fn func())
	Async(fn func())
	DeltaMillis() int64
}

// Queue is the execution queue surface an entry interacts with. The concrete
// implementation lives in internal/queue.
type Queue interface {
	tag.Source

	Name() string
	AddDefinition(name string, v object.Value)
	Definition(name string) string
	HoldEntry(saveName string, e *Entry)
	HeldEntry(saveName string) *Entry
	AddDetermination(v object.Value)
	IsProcedural() bool
	Stop()
	Clear()
	IsStopped() bool
	Size() int
	EntryAt(i int) *Entry
	RemoveFirst() *Entry
	InjectAtStart(entries []*Entry)
	ForceToTimed(t DelayTracker)
	SetDelay(t DelayTracker)
	IsTimed() bool
	Scheduler() Scheduler
	OnStop(fn func())
}

// internalArgument is one preprocessed ordinary argument: an optional prefix
// and a value, each independently compiled for template resolution.
type internalArgument struct {
	prefix        *internalArgument
	value         *tag.Compiled
	arg           *Argument
	shouldProcess bool
	hadColon      bool
	fullRawValue  string
}

// metaArgument is a preprocessed special argument ("if:", "save:") handled by
// the executor before the command sees anything.
type metaArgument struct {
	prefix string
	value  *tag.Compiled
}

// entryInternal is the immutable-shape part of an entry, shared between
// clones. Built once by preprocessing, never mutated afterwards.
type entryInternal struct {
	command       string
	actualCommand Command

	preTaggedArgs  []string
	allArguments   []*internalArgument
	argumentsToUse []*internalArgument
	preprocArgs    []*metaArgument
	rawInputArgs   map[string]bool
	argPrefixMap   map[string]int

	script     *Container
	inside     []Line
	bracedSet  []BracedData
	hasBraces  bool
	instant    bool
	waitFor    bool
	hasTags    bool
	brokenArgs bool
	usageHint  string
	lineNumber int
}

// Entry is one parsed, executable instruction with its arguments. The shared
// internal shape is built once; the per-instance state (object store, owner,
// finished flag) is fresh for every clone.
type Entry struct {
	Internal *entryInternal
	Queue    Queue

	objects      map[string]object.Value
	data         any
	owner        *Entry
	forceInstant bool
	finished     atomic.Bool
}

// nullArgument stands in for brace tokens and nested-block positions in the
// all-arguments array, keeping prefix-map indexes aligned.
var nullArgument = &internalArgument{
	value:        tag.Compile(""),
	arg:          newArgument("", ""),
	fullRawValue: "",
}

// NewEntry preprocesses a raw command keyword plus argument strings into an
// executable entry. It never fails: malformed input produces a reporting stub
// that still constructs, still describes itself, and fails gracefully when
// executed.
func NewEntry(command string, arguments []string, container *Container, inside []Line, lineNumber int) *Entry {
	e := &Entry{
		Internal: &entryInternal{
			command:      strings.ToLower(command),
			script:       container,
			inside:       inside,
			lineNumber:   lineNumber,
			rawInputArgs: make(map[string]bool),
			argPrefixMap: make(map[string]int),
		},
		objects: make(map[string]object.Value),
	}
	in := e.Internal
	// Leading sigils: "^" marks instant execution, "~" marks
	// wait-for-async-completion.
	if strings.HasPrefix(in.command, "^") {
		in.instant = true
		in.command = in.command[1:]
	} else if strings.HasPrefix(in.command, "~") {
		in.command = in.command[1:]
		if cmd, ok := Commands.Lookup(in.command); ok && !cmd.Meta().Holdable {
			debug.EchoError(e, "the command '%s' cannot be waited for", in.command)
		} else {
			in.waitFor = true
		}
	}
	cmd, known := Commands.Lookup(in.command)
	if known {
		in.actualCommand = cmd
	} else {
		debug.EchoError(e, "unknown command '%s'", in.command)
	}
	e.preprocessArgs(arguments)
	if in.actualCommand != nil {
		argCount := len(in.preTaggedArgs)
		meta := in.actualCommand.Meta()
		tooMany := meta.MaxArgs >= 0 && argCount > meta.MaxArgs && !in.hasBraces && len(in.inside) == 0
		if argCount < meta.MinArgs || tooMany {
			debug.EchoError(e, "wrong number of arguments for '%s': got %d, expected %d to %d", in.command, argCount, meta.MinArgs, meta.MaxArgs)
			in.brokenArgs = true
			in.usageHint = meta.Usage()
			in.actualCommand = InvalidCommand
		}
	} else {
		in.actualCommand = InvalidCommand
	}
	return e
}

// preprocessArgs runs steps 3-6 of the preprocessing pipeline: brace
// scanning, meta-argument partitioning, prefix splitting, template
// compilation and the prefix lookup map.
func (e *Entry) preprocessArgs(arguments []string) {
	in := e.Internal
	meta := e.commandMeta()
	// Partition into meta-arguments versus ordinary, tracking brace nesting:
	// anything inside a nested block passes through untouched.
	nestedDepth := 0
	for _, arg := range arguments {
		switch {
		case arg == "{":
			in.hasBraces = true
			nestedDepth++
			in.preTaggedArgs = append(in.preTaggedArgs, arg)
		case arg == "}":
			nestedDepth--
			in.preTaggedArgs = append(in.preTaggedArgs, arg)
		case nestedDepth > 0:
			in.preTaggedArgs = append(in.preTaggedArgs, arg)
		default:
			prefix, value, had := splitPrefix(arg)
			if had && (strings.EqualFold(prefix, "if") || strings.EqualFold(prefix, "save")) {
				in.preprocArgs = append(in.preprocArgs, &metaArgument{
					prefix: strings.ToLower(prefix),
					value:  tag.Compile(value),
				})
				continue
			}
			in.preTaggedArgs = append(in.preTaggedArgs, arg)
		}
	}
	// Compile each ordinary argument: split the prefix, compile prefix and
	// value independently, and record compile-time literals.
	nestedDepth = 0
	for i, arg := range in.preTaggedArgs {
		if arg == "{" {
			in.allArguments = append(in.allArguments, nullArgument)
			nestedDepth++
			continue
		}
		if arg == "}" {
			in.allArguments = append(in.allArguments, nullArgument)
			nestedDepth--
			continue
		}
		if nestedDepth > 0 {
			in.allArguments = append(in.allArguments, nullArgument)
			continue
		}
		argVal := &internalArgument{fullRawValue: arg}
		value := arg
		if prefix, val, had := splitPrefix(arg); had {
			argVal.hadColon = true
			argVal.prefix = &internalArgument{fullRawValue: prefix}
			argVal.prefix.value = tag.Compile(prefix)
			argVal.prefix.arg = newArgument("", prefix)
			value = val
		}
		argVal.value = tag.Compile(value)
		if argVal.value.HasTag {
			in.hasTags = true
		}
		prefixName := ""
		if argVal.prefix != nil {
			prefixName = argVal.prefix.fullRawValue
		}
		argVal.arg = newArgument(prefixName, value)
		if lit := argVal.value.KnownLiteral(); lit != nil {
			argVal.arg.object = lit
			if argVal.prefix == nil {
				in.rawInputArgs[lit.AsLower()] = true
			}
		}
		argVal.shouldProcess = argVal.value.HasTag || argVal.prefix != nil
		in.allArguments = append(in.allArguments, argVal)
		if argVal.prefix != nil {
			name := strings.ToLower(argVal.prefix.fullRawValue)
			if meta != nil {
				if remapped, ok := meta.PrefixRemap[name]; ok {
					name = remapped
				}
			}
			in.argPrefixMap[name] = i
		}
	}
	// Filter out arguments the handler parses by direct lookup instead.
	for _, argVal := range in.allArguments {
		if e.shouldUseArg(argVal) {
			in.argumentsToUse = append(in.argumentsToUse, argVal)
		}
	}
}

func (e *Entry) commandMeta() *CommandMeta {
	if e.Internal.actualCommand == nil {
		return nil
	}
	return e.Internal.actualCommand.Meta()
}

func (e *Entry) shouldUseArg(argVal *internalArgument) bool {
	meta := e.commandMeta()
	if meta == nil || argVal == nullArgument {
		return true
	}
	if argVal.prefix != nil {
		name := strings.ToLower(argVal.prefix.fullRawValue)
		if remapped, ok := meta.PrefixRemap[name]; ok {
			name = remapped
		}
		return !meta.handlesPrefix(name)
	}
	if lit := argVal.value.KnownLiteral(); lit != nil {
		return !meta.handlesRawValue(lit.AsLower())
	}
	return true
}

// splitPrefix splits "name:value" when the colon occurs before any character
// not allowed in a prefix and before the first brace. Placeholder syntax in
// the name position disqualifies the split.
func splitPrefix(arg string) (prefix, value string, ok bool) {
	colon := strings.IndexByte(arg, ':')
	if colon <= 0 {
		return "", arg, false
	}
	for i := 0; i < colon; i++ {
		c := arg[i]
		isPrefixChar := c == '_' || c == '-' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isPrefixChar {
			return "", arg, false
		}
	}
	return arg[:colon], arg[colon+1:], true
}

// Clone produces a shallow duplicate sharing the preprocessed shape but with
// a fresh object store and a fresh execution state. Control-flow constructs
// clone block bodies so every iteration starts clean.
func (e *Entry) Clone() *Entry {
	clone := &Entry{
		Internal: e.Internal,
		Queue:    e.Queue,
		objects:  make(map[string]object.Value, 8),
		data:     e.data,
		owner:    e.owner,
	}
	return clone
}

func (e *Entry) CommandName() string { return e.Internal.command }

func (e *Entry) Command() Command { return e.Internal.actualCommand }

// OriginalArguments returns the ordinary argument strings as constructed,
// immune to any tag filling done later.
func (e *Entry) OriginalArguments() []string { return e.Internal.preTaggedArgs }

func (e *Entry) Script() *Container { return e.Internal.script }

func (e *Entry) LineNumber() int { return e.Internal.lineNumber }

func (e *Entry) InsideLines() []Line { return e.Internal.inside }

func (e *Entry) Broken() bool { return e.Internal.brokenArgs }

func (e *Entry) IsInstant() bool { return e.Internal.instant || e.forceInstant }

// SetInstant forces instant execution for this instance only, bypassing
// per-tick pacing on timed queues.
func (e *Entry) SetInstant(instant bool) { e.forceInstant = instant }

// ShouldWaitFor reports whether the queue must suspend until this entry's
// finished flag is set by background work.
func (e *Entry) ShouldWaitFor() bool {
	return e.Internal.waitFor && !e.finished.Load()
}

func (e *Entry) WaitFor() bool { return e.Internal.waitFor }

// SetFinished marks the entry complete. Once true it is never reset; the
// suspended queue resumes on its next heartbeat.
func (e *Entry) SetFinished(finished bool) {
	if finished {
		e.finished.Store(true)
	}
}

func (e *Entry) IsFinished() bool { return e.finished.Load() }

func (e *Entry) Owner() *Entry { return e.owner }

// SetOwner links a synthetic entry back to the control-flow entry that
// created it.
func (e *Entry) SetOwner(owner *Entry) { e.owner = owner }

func (e *Entry) Data() any { return e.data }

func (e *Entry) SetData(data any) { e.data = data }

// AddObject stores a named value on the entry, populated during parsing and
// consumed during execution (and by entry[name].key lookups once held).
func (e *Entry) AddObject(key string, v object.Value) *Entry {
	if v == nil {
		return e
	}
	v.SetPrefix(key)
	e.objects[key] = v
	return e
}

// DefaultObject stores the first non-nil value under key if nothing is there
// yet.
func (e *Entry) DefaultObject(key string, values ...object.Value) *Entry {
	if _, ok := e.objects[key]; ok {
		return e
	}
	for _, v := range values {
		if v != nil {
			e.AddObject(key, v)
			break
		}
	}
	return e
}

func (e *Entry) HasObject(key string) bool {
	_, ok := e.objects[key]
	return ok
}

func (e *Entry) Object(key string) object.Value {
	return e.objects[key]
}

func (e *Entry) Element(key string) *object.Element {
	if el, ok := e.objects[key].(*object.Element); ok {
		return el
	}
	return nil
}

// TagContext builds the resolution context for this entry's templates.
func (e *Entry) TagContext() *tag.Context {
	if e.Queue == nil {
		return &tag.Context{}
	}
	return &tag.Context{Src: e.Queue}
}

// resolveArg fills one internal argument's value against the current run-time
// state. Literal-only arguments skip resolution entirely.
func (e *Entry) resolveArg(argVal *internalArgument) *Argument {
	arg := argVal.arg
	arg.entry = e
	if argVal.shouldProcess && argVal.value.HasTag {
		arg.object = argVal.value.Resolve(e.TagContext())
	}
	return arg
}

// Arguments returns the arguments passed to the handler's parse step, with
// templates re-resolved for this execution.
func (e *Entry) Arguments() []*Argument {
	in := e.Internal
	args := make([]*Argument, 0, len(in.argumentsToUse))
	for _, argVal := range in.argumentsToUse {
		if argVal == nullArgument {
			continue
		}
		args = append(args, e.resolveArg(argVal))
	}
	return args
}

// ArgForPrefix resolves the argument registered under a prefix name, or nil.
func (e *Entry) ArgForPrefix(prefix string) *Argument {
	idx, ok := e.Internal.argPrefixMap[strings.ToLower(prefix)]
	if !ok {
		return nil
	}
	return e.resolveArg(e.Internal.allArguments[idx])
}

// ArgForPrefixAsElement resolves a prefixed argument to an element, falling
// back to a default when absent. An empty default yields nil.
func (e *Entry) ArgForPrefixAsElement(prefix, defaultValue string) *object.Element {
	arg := e.ArgForPrefix(prefix)
	if arg == nil {
		if defaultValue == "" {
			return nil
		}
		el := object.NewElement(defaultValue)
		el.SetPrefix(prefix)
		return el
	}
	return arg.AsElement()
}

// RequiredArgForPrefixAsElement is ArgForPrefixAsElement that raises the
// invalid-arguments signal when the prefix is missing.
func (e *Entry) RequiredArgForPrefixAsElement(prefix string) (*object.Element, error) {
	el := e.ArgForPrefixAsElement(prefix, "")
	if el == nil {
		return nil, InvalidArguments("must specify input to '%s' argument", prefix)
	}
	return el, nil
}

// ArgAsBoolean reports a raw boolean flag: true when the bare word was
// written, or when a "name:value" argument resolves to true.
func (e *Entry) ArgAsBoolean(name string) bool {
	if e.Internal.rawInputArgs[strings.ToLower(name)] {
		return true
	}
	arg := e.ArgForPrefix(name)
	if arg == nil {
		return false
	}
	return arg.AsElement().AsBoolean()
}

// MetaArgs exposes the preprocessed meta-arguments to the executor.
func (e *Entry) MetaArgs() []MetaArg {
	metas := make([]MetaArg, 0, len(e.Internal.preprocArgs))
	for _, m := range e.Internal.preprocArgs {
		metas = append(metas, MetaArg{Prefix: m.prefix, Value: m.value})
	}
	return metas
}

// MetaArg is the executor's view of one "if:"/"save:" argument.
type MetaArg struct {
	Prefix string
	Value  *tag.Compiled
}

func (e *Entry) String() string {
	var sb strings.Builder
	sb.WriteString(e.Internal.command)
	for _, arg := range e.Internal.preTaggedArgs {
		sb.WriteByte(' ')
		sb.WriteString(stringifyArg(arg))
	}
	for _, m := range e.Internal.preprocArgs {
		sb.WriteByte(' ')
		sb.WriteString(stringifyArg(m.prefix + ":" + m.value.Raw))
	}
	return sb.String()
}

func stringifyArg(arg string) string {
	if strings.ContainsRune(arg, ' ') {
		return "\"" + arg + "\""
	}
	return arg
}

// DebugAttrs implements debug.Debuggable.
func (e *Entry) DebugAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("command", e.Internal.command),
		slog.Int("line", e.Internal.lineNumber),
	}
	if e.Internal.script != nil {
		attrs = append(attrs, slog.String("script", e.Internal.script.Name))
	}
	if e.Queue != nil {
		attrs = append(attrs, slog.String("queue", e.Queue.Name()))
	}
	return attrs
}

// ShouldDebug implements debug.Debuggable.
func (e *Entry) ShouldDebug() bool {
	if e.Internal.script != nil {
		return e.Internal.script.Debug
	}
	return true
}
