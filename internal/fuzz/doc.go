// Package fuzztests houses Go fuzz harnesses for the shader front end and
// the mutation passes (source -> lexer -> parser -> passes -> printer).
// The goal is to catch panics, hangs and unparsable output on arbitrary
// inputs.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet,
// прогоняют их через лексер/парсер и, если разбор удался, через проходы.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.

package fuzztests
