// Package format pretty-prints program trees back to GLSL.
//
// Назначение: детерминированный вывод вариантов и доноров; комментарии
// исходника не сохраняются.
// Скобки расставляются по приоритетам, поэтому сгенерированные узлы
// не обязаны оборачиваться в группы.
// Зависимости: internal/ast, internal/types.
package format
