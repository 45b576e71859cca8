package mesh

import "errors"

// ErrDataFormat：原始网格数组不一致或不满足多边形约束，构建期致命错误
var ErrDataFormat = errors.New("mesh data format")
