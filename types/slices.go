package types

// GrowSlice returns a slice of length newLen holding the contents of
// myslice, padded with fill. The input is returned unchanged when it is
// already long enough.
func GrowSlice[T any](myslice []T, newLen int, fill T) (biggerSlice []T) {
	l := len(myslice)
	if l >= newLen {
		return myslice
	}
	if cap(myslice) >= newLen {
		biggerSlice = myslice[:newLen]
	} else {
		biggerSlice = make([]T, newLen, newLen+newLen/4)
		copy(biggerSlice, myslice)
	}
	for i := l; i < newLen; i++ {
		biggerSlice[i] = fill
	}
	return
}
