// Package pnnx loads pnnx-style model descriptions: a text graph definition
// (.param) plus a binary weight container (.bin).
//
// The .param format is line oriented:
//
//	7767517
//	<operator count> <operand count>
//	<type> <name> <#inputs> <#outputs> <input ids...> <output ids...> <key=value...>
//
// Operand ids name the data edges; the producer/consumer relationships of the
// graph are reconstructed from them. Trailing key=value tokens carry typed
// operator parameters. Keys starting with '@' declare weight attributes whose
// data lives in the .bin container, keyed "<operator>.<attribute>". Keys
// starting with '#' annotate operand shapes, e.g. "#0=(1,3)f32".
package pnnx
